// Package retry wraps github.com/cenkalti/backoff/v4 with the two retry
// shapes the relayer core needs: a bounded constant-delay retry for a
// single event handler invocation, and an unbounded constant-delay
// supervisor restart for a long-running watcher task.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent marks err as non-retryable: Supervise and WithBoundedRetries
// will stop immediately and return it, instead of backing off and trying
// again.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// WithBoundedRetries calls fn up to maxRetries+1 times with a constant
// delay between attempts, stopping early on success, on ctx
// cancellation, or when fn returns a Permanent error. This is the
// decorator every event handler is wrapped in: 100ms delay, 5 retries, per
// the relayer's handler-retry contract. notify, if non-nil, is called once
// per retry, before the backoff delay is applied; it is not called for the
// final attempt that exhausts the retry budget, nor for a Permanent error.
// It is the hook callers use to log one line per retry rather than just a
// final failure.
func WithBoundedRetries(ctx context.Context, delay time.Duration, maxRetries uint64, fn func(ctx context.Context) error, notify func(err error, delay time.Duration)) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), maxRetries), ctx)
	if notify == nil {
		notify = func(error, time.Duration) {}
	}
	return backoff.RetryNotify(func() error {
		return fn(ctx)
	}, b, notify)
}

// Supervise runs task repeatedly, waiting delay between attempts,
// forever, until task returns nil (task decided to stop on its own,
// usually only on context cancellation), ctx is canceled, or task returns
// a Permanent error. This is the watcher/bridge-watcher outer restart
// loop: a 1-second constant backoff with no retry ceiling, because the
// watcher must eventually resume no matter how long the underlying chain
// or store stays unavailable.
func Supervise(ctx context.Context, delay time.Duration, task func(ctx context.Context) error) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(delay), ctx)
	return backoff.Retry(func() error {
		return task(ctx)
	}, b)
}
