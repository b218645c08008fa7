package retry

import (
	"math"
	"math/bits"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// BackOffPolicy decides how long to wait between attempts. Start is called
// once per execution and returns a fresh delay sequence, so a policy can be
// shared by concurrent executions.
type BackOffPolicy interface {
	Start() backoff.BackOff
}

// Default exponential parameters.
const (
	DefaultInitialInterval = 100 * time.Millisecond
	DefaultMultiplier      = 2.0
	DefaultMaxInterval     = 30 * time.Second
)

// ExponentialBackOffPolicy grows the delay by Multiplier after each attempt,
// starting at InitialInterval and never exceeding MaxInterval. No jitter is
// applied.
type ExponentialBackOffPolicy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// NewExponentialBackOffPolicy returns a policy with the given parameters.
func NewExponentialBackOffPolicy(initial time.Duration, multiplier float64, maxInterval time.Duration) *ExponentialBackOffPolicy {
	return &ExponentialBackOffPolicy{
		InitialInterval: initial,
		Multiplier:      multiplier,
		MaxInterval:     maxInterval,
	}
}

// Start implements BackOffPolicy.
func (p *ExponentialBackOffPolicy) Start() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval: p.InitialInterval,
		Multiplier:      p.Multiplier,
		MaxInterval:     p.MaxInterval,
	}
	b.Reset()
	if p.MaxInterval <= 0 {
		return b
	}
	return &capped{BackOff: b, limit: p.MaxInterval}
}

// capped clamps every delay of a sequence to limit. ExponentialBackOff only
// caps the growth, not InitialInterval itself.
type capped struct {
	backoff.BackOff
	limit time.Duration
}

func (c *capped) NextBackOff() time.Duration {
	d := c.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	return min(d, c.limit)
}

// FixedBackOffPolicy waits the same Interval between every attempt.
type FixedBackOffPolicy struct {
	Interval time.Duration
}

// Start implements BackOffPolicy.
func (p FixedBackOffPolicy) Start() backoff.BackOff {
	return backoff.NewConstantBackOff(p.Interval)
}

// NoBackOffPolicy retries immediately.
type NoBackOffPolicy struct{}

// Start implements BackOffPolicy.
func (NoBackOffPolicy) Start() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

// DelayFunc computes the delay after the given failed attempt (starting at 1).
// It implements BackOffPolicy, so attempt-indexed strategies compose with the
// wrappers below.
type DelayFunc func(attempt int) time.Duration

// Start implements BackOffPolicy.
func (f DelayFunc) Start() backoff.BackOff {
	return &delaySequence{delay: f}
}

type delaySequence struct {
	delay   DelayFunc
	attempt int
}

func (s *delaySequence) NextBackOff() time.Duration {
	s.attempt++
	return s.delay(s.attempt)
}

func (s *delaySequence) Reset() {
	s.attempt = 0
}

// Linear increases the delay by base after each attempt.
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Exponential doubles the delay after each attempt: base * 2^(attempt-1).
func Exponential(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		if attempt <= 0 || base <= 0 {
			return base
		}
		shift := uint(attempt - 1)
		if shift >= uint(bits.LeadingZeros64(uint64(base))) {
			return time.Duration(math.MaxInt64)
		}
		return base << shift
	}
}

// WithCap limits the delay of f to max.
func WithCap(max time.Duration, f DelayFunc) DelayFunc {
	return func(attempt int) time.Duration {
		return min(f(attempt), max)
	}
}

// WithJitter spreads the delay of f by ±factor. A factor of 0.2 yields delays
// between 80% and 120% of the original.
func WithJitter(factor float64, f DelayFunc) DelayFunc {
	return func(attempt int) time.Duration {
		d := f(attempt)
		if factor <= 0 {
			return d
		}
		spread := float64(d) * factor
		// #nosec G404 -- jitter does not need a cryptographic source
		jittered := time.Duration(float64(d) + (rand.Float64()*2-1)*spread)
		return max(jittered, 0)
	}
}

var (
	_ BackOffPolicy = (*ExponentialBackOffPolicy)(nil)
	_ BackOffPolicy = FixedBackOffPolicy{}
	_ BackOffPolicy = NoBackOffPolicy{}
	_ BackOffPolicy = DelayFunc(nil)
)
