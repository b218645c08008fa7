package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// OnRetryFunc is called before each retry sleep.
type OnRetryFunc func(ctx context.Context, s *State, delay time.Duration)

// OnSuccessFunc is called when an attempt succeeds.
type OnSuccessFunc func(ctx context.Context, s *State)

// OnExhaustedFunc is called when the executor gives up, before recovery.
type OnExhaustedFunc func(ctx context.Context, s *State)

// config holds Template configuration.
type config struct {
	retryPolicy   RetryPolicy
	backOffPolicy BackOffPolicy
	clock         Clock
	logger        zerolog.Logger
	sessions      int

	onRetry     OnRetryFunc
	onSuccess   OnSuccessFunc
	onExhausted OnExhaustedFunc
}

// Option configures a Template.
type Option func(*config)

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *config) {
		c.retryPolicy = p
	}
}

// WithMaxAttempts is shorthand for a SimpleRetryPolicy allowing n attempts.
func WithMaxAttempts(n int) Option {
	return WithRetryPolicy(NewSimpleRetryPolicy(n))
}

// WithBackOffPolicy sets the backoff policy.
func WithBackOffPolicy(p BackOffPolicy) Option {
	return func(c *config) {
		c.backOffPolicy = p
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger. Attempts are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithSessionCapacity limits how many stateful retries are tracked at once.
// When full, starting another evicts the least recently attempted one,
// whose next invocation then begins a fresh retry. Values below 1 restore
// DefaultSessionCapacity.
func WithSessionCapacity(n int) Option {
	return func(c *config) {
		c.sessions = n
	}
}

// OnRetry sets a hook that is called before each retry sleep.
func OnRetry(fn OnRetryFunc) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

// OnSuccess sets a hook that is called when an attempt succeeds.
func OnSuccess(fn OnSuccessFunc) Option {
	return func(c *config) {
		c.onSuccess = fn
	}
}

// OnExhausted sets a hook that is called when all attempts are exhausted.
func OnExhausted(fn OnExhaustedFunc) Option {
	return func(c *config) {
		c.onExhausted = fn
	}
}
