package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

func TestErrorClassification(t *testing.T) {
	transient := Transient(errors.New("connection reset"))
	permanent := Permanent(errors.New("message to delete not found"))

	assert.True(t, IsTransient(transient))
	assert.False(t, IsPermanent(transient))
	assert.True(t, IsPermanent(permanent))
	assert.False(t, IsTransient(permanent))

	assert.True(t, errors.Is(transient, reason.ErrTransportTransient))
	assert.True(t, errors.Is(permanent, reason.ErrTransportPermanent))
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_PermanentFailureIsNotRetried(t *testing.T) {
	calls := 0
	permanent := Permanent(errors.New("chat not found"))
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, reason.ErrTransportPermanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_NotModifiedIsNotRetried(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrNotModified
	})
	assert.ErrorIs(t, err, ErrNotModified)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_TransientFailureRetries(t *testing.T) {
	if testing.Short() {
		t.Skip("backoff sleeps make this slow")
	}
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return Transient(errors.New("flaky network"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_GivesUpAfterThreeAttempts(t *testing.T) {
	if testing.Short() {
		t.Skip("backoff sleeps make this slow")
	}
	calls := 0
	transient := Transient(errors.New("still down"))
	err := WithRetry(context.Background(), func() error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, reason.ErrTransportTransient)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		cancel()
	}()
	err := WithRetry(ctx, func() error {
		calls++
		return Transient(errors.New("down"))
	})
	// Either the cancel hit during backoff or the retries ran out; in both
	// cases the call count never exceeds the attempt cap.
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 3)
}
