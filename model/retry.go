package model

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const retryDelay = 500 * time.Millisecond

// Retry runs op with a per-attempt timeout and retries it once on failure.
func Retry[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return op(attemptCtx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(2),
	)
}
