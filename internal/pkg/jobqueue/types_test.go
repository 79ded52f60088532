package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Notify Owner", JobTypeNotifyOwner, "notify_owner"},
		{"View Refresh", JobTypeViewRefresh, "view_refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name:      "failed job with retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3},
			retryable: true,
		},
		{
			name:      "failed job out of retries",
			job:       &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "completed job is never retried",
			job:       &Job{Status: JobStatusCompleted, RetryCount: 0, MaxRetries: 3},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *job.ProcessedAt, time.Second)

	job.MarkAsFailed("gateway down")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "gateway down", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestNotifyOwnerJobPayloadRoundTrip(t *testing.T) {
	payload := NotifyOwnerJobPayload{OwnerID: 42}

	decoded, err := NotifyOwnerJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload.OwnerID, decoded.OwnerID)
}

func TestViewRefreshJobPayloadRoundTrip(t *testing.T) {
	payload := ViewRefreshJobPayload{ArtworkID: 7}

	decoded, err := ViewRefreshJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload.ArtworkID, decoded.ArtworkID)
}

func TestSweepIntervals(t *testing.T) {
	// The maintenance sweep must run well inside the snapshot retention
	// window or restorable content could expire between sweeps unnoticed.
	assert.Equal(t, time.Hour, MaintenanceInterval)
	assert.Equal(t, 12*time.Hour, ReminderInterval)
	assert.Equal(t, 5*time.Second, CounterFlushInterval)
}
