package retry

import "time"

// RetryPolicy decides, after a failed attempt, whether another attempt should
// be made. Implementations must be safe for concurrent use; all per-execution
// data lives in State.
type RetryPolicy interface {
	CanRetry(s *State) bool
}

// RetryPolicyFunc is an adapter that allows a function to be used as a
// RetryPolicy.
type RetryPolicyFunc func(s *State) bool

// CanRetry implements RetryPolicy.
func (f RetryPolicyFunc) CanRetry(s *State) bool {
	return f(s)
}

// Condition determines whether an error should be retried.
type Condition func(error) bool

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// DefaultMaxAttempts is the attempt limit of a new Template.
const DefaultMaxAttempts = 3

// SimpleRetryPolicy retries a fixed number of times. MaxAttempts includes the
// first attempt; zero or less allows the first attempt only. Retryable, when
// set, restricts which errors are retried.
type SimpleRetryPolicy struct {
	MaxAttempts int
	Retryable   Condition
}

// NewSimpleRetryPolicy returns a count-limited policy allowing n attempts.
func NewSimpleRetryPolicy(n int) *SimpleRetryPolicy {
	return &SimpleRetryPolicy{MaxAttempts: n}
}

// CanRetry implements RetryPolicy.
func (p *SimpleRetryPolicy) CanRetry(s *State) bool {
	if s.LastErr == nil {
		return true
	}
	if p.Retryable != nil && !p.Retryable(s.LastErr) {
		return false
	}
	return s.Attempts < p.MaxAttempts
}

// NeverRetryPolicy allows the first attempt only.
type NeverRetryPolicy struct{}

// CanRetry implements RetryPolicy.
func (NeverRetryPolicy) CanRetry(s *State) bool {
	return s.LastErr == nil
}

// AlwaysRetryPolicy retries until the callback succeeds, the error is
// terminal, or the context is done. Use with care.
type AlwaysRetryPolicy struct{}

// CanRetry implements RetryPolicy.
func (AlwaysRetryPolicy) CanRetry(*State) bool {
	return true
}

// TimeoutRetryPolicy retries until Timeout has elapsed since the first attempt.
type TimeoutRetryPolicy struct {
	Timeout time.Duration
}

// CanRetry implements RetryPolicy.
func (p TimeoutRetryPolicy) CanRetry(s *State) bool {
	return s.Elapsed() <= p.Timeout
}

// CompositeRetryPolicy combines policies. By default every policy must agree
// to retry; with Optimistic set, any one of them is enough.
type CompositeRetryPolicy struct {
	Policies   []RetryPolicy
	Optimistic bool
}

// CanRetry implements RetryPolicy.
func (p CompositeRetryPolicy) CanRetry(s *State) bool {
	if len(p.Policies) == 0 {
		return true
	}
	for _, policy := range p.Policies {
		ok := policy.CanRetry(s)
		if p.Optimistic && ok {
			return true
		}
		if !p.Optimistic && !ok {
			return false
		}
	}
	return !p.Optimistic
}

var (
	_ RetryPolicy = (*SimpleRetryPolicy)(nil)
	_ RetryPolicy = NeverRetryPolicy{}
	_ RetryPolicy = AlwaysRetryPolicy{}
	_ RetryPolicy = TimeoutRetryPolicy{}
	_ RetryPolicy = CompositeRetryPolicy{}
	_ RetryPolicy = RetryPolicyFunc(nil)
)
