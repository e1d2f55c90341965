// Package backoff retries fallible remote calls with capped exponential backoff.
package backoff

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Default retry configuration values
const (
	// DefaultMaxAttempts is the total number of attempts, including the first one
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the wait after the first failed attempt
	DefaultBaseDelay = 1000 * time.Millisecond
	// DefaultMaxDelay caps the wait between attempts
	DefaultMaxDelay = 10000 * time.Millisecond
)

// Config controls how an Executor retries.
type Config struct {
	// MaxAttempts is the total number of attempts before giving up
	MaxAttempts int
	// BaseDelay is multiplied by 2^attempt to get the wait after a failure
	BaseDelay time.Duration
	// MaxDelay is the ceiling applied to every wait
	MaxDelay time.Duration
	// Retryable reports whether a failure may be retried. Nil retries every failure.
	Retryable func(error) bool
	// OnRetry is called before each wait. It must not have side effects on caller state.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig returns the three-attempt, 1s base, 10s cap configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Executor invokes an operation until it succeeds or attempts are exhausted.
// It is safe for concurrent use; it keeps no per-call state.
type Executor struct {
	config Config
	logger *logrus.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor. Zero values in config fall back to the defaults.
func NewExecutor(config Config, logger *logrus.Logger) *Executor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultBaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Executor{
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.config
}

// Do runs op, retrying failures with exponential backoff.
//
// The failure of the last attempt is returned unchanged. A failure that the
// Retryable hook rejects is returned immediately. If ctx ends while waiting,
// no further attempt is scheduled and ctx.Err() is returned.
func (e *Executor) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < e.config.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if e.config.Retryable != nil && !e.config.Retryable(lastErr) {
			return lastErr
		}
		if attempt == e.config.MaxAttempts-1 {
			break
		}

		delay := Delay(e.config, attempt)
		e.logger.WithFields(logrus.Fields{
			"operation": name,
			"attempt":   attempt + 1,
			"max":       e.config.MaxAttempts,
			"backoff":   delay.String(),
			"error":     lastErr,
		}).Warn("Operation failed, retrying")
		if e.config.OnRetry != nil {
			e.config.OnRetry(attempt+1, delay, lastErr)
		}

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// Delay computes min(base * 2^attempt, max) for a zero-based attempt.
func Delay(config Config, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Past 30 doublings any sane base is beyond the cap.
	if attempt > 30 {
		return config.MaxDelay
	}
	delay := config.BaseDelay << uint(attempt)
	if delay > config.MaxDelay || delay <= 0 {
		return config.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
