package retry

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy handles retry logic with exponential backoff
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	retryable    func(error) bool
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a new retry policy. Every error is retried until
// WithRetryable narrows it.
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     5 * time.Minute,
		retryable:    func(error) bool { return true },
		sleep:        sleepContext,
	}
}

// WithRetryable sets which errors are worth another attempt
func (r *RetryPolicy) WithRetryable(fn func(error) bool) *RetryPolicy {
	r.retryable = fn
	return r
}

// WithMaxDelay caps the backoff
func (r *RetryPolicy) WithMaxDelay(d time.Duration) *RetryPolicy {
	r.maxDelay = d
	return r
}

// Execute runs fn until it succeeds, fails permanently, runs out of
// attempts or ctx is done
func (r *RetryPolicy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := r.initialDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !r.retryable(err) {
			return err
		}

		// Don't sleep after last attempt
		if attempt < r.maxAttempts {
			if err := r.sleep(ctx, delay); err != nil {
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, lastErr)
			}
			// Exponential backoff: grow the delay by half each time
			delay = time.Duration(float64(delay) * 1.5)
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
