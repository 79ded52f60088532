package transport

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const maxAttempts = 3

// WithRetry runs a transport call, retrying transient failures with
// exponential backoff (1s, 2s, 4s). Permanent failures and ErrNotModified
// return immediately. After the last attempt the transient error is returned
// as-is; callers treat it as a best-effort failure and move on.
func WithRetry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = call()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt < maxAttempts-1 {
			wait := time.Duration(1<<attempt) * time.Second
			log.Warnf("[Transport] transient failure (attempt %d/%d): %v, retrying in %s", attempt+1, maxAttempts, err, wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	log.Errorf("[Transport] giving up after %d attempts: %v", maxAttempts, err)
	return err
}
