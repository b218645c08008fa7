package interceptor

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/bjaus/retrytx/retry"
)

// Configurer is the configuration surface shared by every builder flavor.
type Configurer interface {
	SetRetryOperations(ops retry.Operations) error
	SetMaxAttempts(n int) error
	SetBackOffOptions(initial time.Duration, multiplier float64, maxInterval time.Duration) error
	SetRetryPolicy(p retry.RetryPolicy) error
	SetBackOffPolicy(p retry.BackOffPolicy) error
	SetRecoverer(r Recoverer)
	SetRollback(r Recoverer)
	SetLabel(label string)
	SetLogger(l zerolog.Logger)
}

// Option is one configuration call, applied by Builder.Apply.
type Option func(Configurer) error

// RetryOperations sets fully custom retry operations.
func RetryOperations(ops retry.Operations) Option {
	return func(c Configurer) error {
		return c.SetRetryOperations(ops)
	}
}

// MaxAttempts limits the default template to n attempts.
func MaxAttempts(n int) Option {
	return func(c Configurer) error {
		return c.SetMaxAttempts(n)
	}
}

// BackOffOptions installs an exponential backoff in the default template.
func BackOffOptions(initial time.Duration, multiplier float64, maxInterval time.Duration) Option {
	return func(c Configurer) error {
		return c.SetBackOffOptions(initial, multiplier, maxInterval)
	}
}

// RetryPolicy installs a custom retry policy.
func RetryPolicy(p retry.RetryPolicy) Option {
	return func(c Configurer) error {
		return c.SetRetryPolicy(p)
	}
}

// BackOffPolicy installs a custom backoff policy.
func BackOffPolicy(p retry.BackOffPolicy) Option {
	return func(c Configurer) error {
		return c.SetBackOffPolicy(p)
	}
}

// WithRecoverer sets the exhaustion hook.
func WithRecoverer(r Recoverer) Option {
	return func(c Configurer) error {
		c.SetRecoverer(r)
		return nil
	}
}

// WithRollback sets the rollback hook.
func WithRollback(r Recoverer) Option {
	return func(c Configurer) error {
		c.SetRollback(r)
		return nil
	}
}

// Label names the interceptor.
func Label(label string) Option {
	return func(c Configurer) error {
		c.SetLabel(label)
		return nil
	}
}

// Logger sets the logger.
func Logger(l zerolog.Logger) Option {
	return func(c Configurer) error {
		c.SetLogger(l)
		return nil
	}
}

var (
	_ Configurer = (*Builder[*OperationsInterceptor])(nil)
	_ Configurer = (*StatefulBuilder)(nil)
)
