package interceptor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bjaus/retrytx/retry"
)

// Assembly is the validated configuration a Builder hands to its flavor's
// assemble function.
type Assembly struct {
	// Operations is the caller's retry operations, or the builder's default
	// template when none were set.
	Operations retry.Operations
	Recoverer  Recoverer
	Rollbacker Recoverer
	Label      string
	Logger     zerolog.Logger
}

// Builder assembles a retry interceptor of type T. It is single-use and not
// safe for concurrent use.
//
// Policy-affecting calls are mutually constrained:
//
//   - SetRetryOperations excludes every other policy-affecting call
//   - SetRetryPolicy must come before any other policy-affecting call
//   - SetMaxAttempts may be repeated, but not after SetRetryPolicy
//   - a backoff is configured once: after SetBackOffOptions or
//     SetBackOffPolicy, a second call to either is rejected
//
// A rejected call returns an error matching ErrConflict and leaves the
// builder unchanged.
type Builder[T MethodInterceptor] struct {
	template   *retry.Template
	simple     *retry.SimpleRetryPolicy
	operations retry.Operations

	recoverer  Recoverer
	rollbacker Recoverer
	label      string
	logger     zerolog.Logger

	progress progress
	assemble func(Assembly) T
	built    bool
	result   T
}

// Stateless returns a builder for an OperationsInterceptor.
func Stateless() *Builder[*OperationsInterceptor] {
	return Custom(assembleStateless)
}

// Custom returns a builder for an interceptor flavor defined by assemble.
// The builder enforces the configuration rules; assemble only turns the
// validated Assembly into an interceptor and is called at most once.
func Custom[T MethodInterceptor](assemble func(Assembly) T) *Builder[T] {
	return &Builder[T]{
		template: retry.NewTemplate(),
		simple:   retry.NewSimpleRetryPolicy(retry.DefaultMaxAttempts),
		logger:   zerolog.Nop(),
		assemble: assemble,
	}
}

// NewStateless builds an OperationsInterceptor from opts.
func NewStateless(opts ...Option) (*OperationsInterceptor, error) {
	b := Stateless()
	if err := b.Apply(opts...); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Apply applies opts in order and stops at the first error.
func (b *Builder[T]) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return err
		}
	}
	return nil
}

// SetRetryOperations sets fully custom retry operations, which then take the
// place of the default template. It fails once the template was modified.
func (b *Builder[T]) SetRetryOperations(ops retry.Operations) error {
	return b.transition(callRetryOperations, ops == nil, func() {
		b.operations = ops
	})
}

// SetMaxAttempts limits the default template to n attempts, including the
// first; n <= 0 allows the first attempt only. It fails after
// SetRetryOperations or SetRetryPolicy.
func (b *Builder[T]) SetMaxAttempts(n int) error {
	return b.transition(callMaxAttempts, false, func() {
		b.simple.MaxAttempts = n
		b.template.SetRetryPolicy(b.simple)
	})
}

// SetBackOffOptions installs an exponential backoff in the default template.
// It fails after SetRetryOperations or once a backoff is configured.
func (b *Builder[T]) SetBackOffOptions(initial time.Duration, multiplier float64, maxInterval time.Duration) error {
	return b.transition(callBackOffOptions, false, func() {
		b.template.SetBackOffPolicy(retry.NewExponentialBackOffPolicy(initial, multiplier, maxInterval))
	})
}

// SetRetryPolicy installs a custom retry policy in the default template. It
// must precede every other policy-affecting call.
func (b *Builder[T]) SetRetryPolicy(p retry.RetryPolicy) error {
	return b.transition(callRetryPolicy, p == nil, func() {
		b.template.SetRetryPolicy(p)
	})
}

// SetBackOffPolicy installs a custom backoff policy in the default template.
// It fails after SetRetryOperations or once a backoff is configured,
// including by an earlier SetBackOffPolicy.
func (b *Builder[T]) SetBackOffPolicy(p retry.BackOffPolicy) error {
	return b.transition(callBackOffPolicy, p == nil, func() {
		b.template.SetBackOffPolicy(p)
	})
}

// SetRecoverer sets the hook that runs when retries are exhausted.
func (b *Builder[T]) SetRecoverer(r Recoverer) {
	b.recoverer = r
}

// SetRollback sets the hook that runs when the intercepted action is rolled
// back.
func (b *Builder[T]) SetRollback(r Recoverer) {
	b.rollbacker = r
}

// SetLabel names the interceptor in logs and retry state.
func (b *Builder[T]) SetLabel(label string) {
	b.label = label
}

// SetLogger sets the logger handed to the interceptor and default template.
func (b *Builder[T]) SetLogger(l zerolog.Logger) {
	b.logger = l
}

// Template returns the default template, as altered so far.
func (b *Builder[T]) Template() *retry.Template { return b.template }

// RetryOperations returns the custom retry operations, or nil.
func (b *Builder[T]) RetryOperations() retry.Operations { return b.operations }

// Recoverer returns the recovery hook, or nil.
func (b *Builder[T]) Recoverer() Recoverer { return b.recoverer }

// Rollbacker returns the rollback hook, or nil.
func (b *Builder[T]) Rollbacker() Recoverer { return b.rollbacker }

// Label returns the configured label.
func (b *Builder[T]) Label() string { return b.label }

// Build finalizes the builder. Later calls return the same interceptor, and
// policy-affecting setters fail with ErrFinalized. Recoverer, rollback, label
// and logger changes made after Build do not reach the interceptor.
func (b *Builder[T]) Build() T {
	if b.built {
		return b.result
	}
	a := Assembly{
		Operations: b.operations,
		Recoverer:  b.recoverer,
		Rollbacker: b.rollbacker,
		Label:      b.label,
		Logger:     b.logger,
	}
	if a.Operations == nil {
		b.template.SetLogger(b.logger)
		a.Operations = b.template
	}
	b.result = b.assemble(a)
	b.built = true

	b.logger.Debug().
		Str("label", b.label).
		Bool("custom_operations", b.operations != nil).
		Bool("template_altered", b.progress.templateAltered()).
		Msg("retry interceptor built")
	return b.result
}

func (b *Builder[T]) transition(c call, isNil bool, apply func()) error {
	if b.built {
		return fmt.Errorf("%w: %s", ErrFinalized, c)
	}
	if isNil {
		return fmt.Errorf("%w: %s", ErrNilStrategy, c)
	}
	next, err := b.progress.next(c)
	if err != nil {
		return err
	}
	apply()
	b.progress = next
	return nil
}
