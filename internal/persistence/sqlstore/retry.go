package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig configures retry behavior for transactions
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns a retry configuration with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryHelper reruns transactions that failed with a transient error
type RetryHelper struct {
	config RetryConfig
	mapper *ErrorMapper
	logger *slog.Logger
}

// NewRetryHelper creates a new retry helper
func NewRetryHelper(config RetryConfig, logger *slog.Logger) *RetryHelper {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryHelper{
		config: config,
		mapper: NewErrorMapper(),
		logger: logger,
	}
}

// RetryableFunc represents a function that can be retried
type RetryableFunc func() error

// WithRetry executes fn, retrying with exponential backoff while it fails
// with a transient error. Non-transient errors are returned immediately.
func (rh *RetryHelper) WithRetry(ctx context.Context, fn RetryableFunc) error {
	var lastErr error
	delay := rh.config.InitialDelay

	for attempt := 0; attempt <= rh.config.MaxRetries; attempt++ {
		if attempt > 0 {
			rh.logger.Warn("retrying transaction", "attempt", attempt, "delay", delay, "error", lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * rh.config.BackoffFactor)
				if delay > rh.config.MaxDelay {
					delay = rh.config.MaxDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !rh.mapper.IsTransient(err) {
			return err
		}
	}

	return fmt.Errorf("transaction failed after %d retries: %w", rh.config.MaxRetries, lastErr)
}
