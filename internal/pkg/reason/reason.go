package reason

import "errors"

// Stable failure reasons surfaced to clients. Handlers match on these with
// errors.Is and pick the right user-facing response; anything else is a
// generic "try again" failure.
var (
	ErrQuotaExceeded             = errors.New("quota_exceeded")
	ErrAlreadyReacted            = errors.New("already_reacted")
	ErrNotFound                  = errors.New("not_found")
	ErrUserBlocked               = errors.New("user_blocked")
	ErrRetentionExpired          = errors.New("retention_expired")
	ErrValidationFailed          = errors.New("validation_failed")
	ErrClassificationUnavailable = errors.New("classification_unavailable")
	ErrTransportTransient        = errors.New("transport_transient")
	ErrTransportPermanent        = errors.New("transport_permanent")
)

// Code returns the stable string code for an error, or "internal" when the
// error does not carry one of the known reasons.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrAlreadyReacted):
		return "already_reacted"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUserBlocked):
		return "user_blocked"
	case errors.Is(err, ErrRetentionExpired):
		return "retention_expired"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrClassificationUnavailable):
		return "classification_unavailable"
	case errors.Is(err, ErrTransportTransient):
		return "transport_transient"
	case errors.Is(err, ErrTransportPermanent):
		return "transport_permanent"
	}
	return "internal"
}

// Retryable reports whether the failure is worth retrying from the caller's
// side. Only transient transport failures qualify.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransportTransient)
}
