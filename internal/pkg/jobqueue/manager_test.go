package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StopKeepsStopChannelUsable(t *testing.T) {
	m := &Manager{
		stopCh:  make(chan struct{}),
		running: true,
		queue:   &Queue{},
	}

	// A worker that only reads the stop channel, like the sweep loops do.
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		<-m.stopCh
	}()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return; worker never observed the close")
	}

	// The closed channel must stay in place until the next Start cycle so a
	// worker mid-loop never selects on nil.
	require.NotNil(t, m.stopCh)
	select {
	case <-m.stopCh:
	default:
		t.Fatal("stop channel should be closed after Stop")
	}
	assert.False(t, m.IsRunning())

	// Idempotent.
	m.Stop()
}
