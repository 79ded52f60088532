package reason

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"quota", ErrQuotaExceeded, "quota_exceeded"},
		{"already reacted", ErrAlreadyReacted, "already_reacted"},
		{"not found", ErrNotFound, "not_found"},
		{"blocked account", ErrUserBlocked, "user_blocked"},
		{"retention expired", ErrRetentionExpired, "retention_expired"},
		{"validation", ErrValidationFailed, "validation_failed"},
		{"classifier down", ErrClassificationUnavailable, "classification_unavailable"},
		{"wrapped reason survives", fmt.Errorf("artwork 9: %w", ErrNotFound), "not_found"},
		{"unknown error", errors.New("disk on fire"), "internal"},
		{"nil-adjacent wrapper", fmt.Errorf("send: %w", ErrTransportTransient), "transport_transient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Code(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrTransportTransient))
	assert.True(t, Retryable(fmt.Errorf("edit: %w", ErrTransportTransient)))
	assert.False(t, Retryable(ErrTransportPermanent))
	assert.False(t, Retryable(ErrQuotaExceeded))
	assert.False(t, Retryable(errors.New("whatever")))
}
