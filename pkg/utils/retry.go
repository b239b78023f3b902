package utils

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WithRetry runs op with a per-attempt timeout and bounded exponential
// backoff. maxRetries counts retries, not attempts: maxRetries=3 allows up to
// four calls. The parent ctx cancels waiting between attempts as well as the
// attempts themselves.
func WithRetry(ctx context.Context, timeout time.Duration, maxRetries int, op func(ctx context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempt := func() error {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := op(callCtx); err != nil {
			// Caller cancellation is permanent; retrying cannot help. The
			// operation's own error stays attached for failure logs.
			if ctx.Err() != nil {
				return backoff.Permanent(errors.Join(ctx.Err(), err))
			}
			return err
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	return backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx,
	))
}
