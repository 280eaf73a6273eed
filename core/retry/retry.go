package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultMaxTries caps retry attempts for transient connector failures.
const DefaultMaxTries = 4

// Do runs op with exponential backoff until it succeeds, returns a permanent
// error, or the attempt cap is reached. Cancellation of ctx stops further
// attempts between waits.
func Do[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(maxTries),
	)
}

// Permanent marks err as non-retryable. Validation failures and auth errors
// must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
