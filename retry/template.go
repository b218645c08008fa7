package retry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rs/zerolog"
)

// DefaultSessionCapacity is the number of stateful retries a Template tracks
// unless WithSessionCapacity says otherwise.
const DefaultSessionCapacity = 1024

// Callback is one attempt of the retried work.
type Callback func(ctx context.Context, s *State) (any, error)

// RecoveryCallback produces the final result once retries are exhausted.
type RecoveryCallback func(ctx context.Context, s *State) (any, error)

// Operations executes work with retry semantics.
type Operations interface {
	// Execute runs cb until it succeeds or the retry policy gives up. When it
	// gives up, recovery (if non-nil) supplies the result; otherwise the last
	// error is returned.
	Execute(ctx context.Context, label string, cb Callback, recovery RecoveryCallback) (any, error)

	// ExecuteStateful makes a single attempt of a retry identified by key.
	// Failures are returned to the caller, who is expected to invoke again
	// with the same key; the retry history survives between calls until the
	// attempt succeeds or the policy gives up and recovery runs.
	ExecuteStateful(ctx context.Context, key, label string, cb Callback, recovery RecoveryCallback) (any, error)
}

// Template is the default Operations. Its policies may be changed with the
// setters until it is handed to an interceptor; after that it is safe for
// concurrent use.
type Template struct {
	cfg config

	mu       sync.Mutex
	sessions *simplelru.LRU[string, *session]
}

type session struct {
	mu    sync.Mutex
	state *State
	seq   backoff.BackOff
}

// NewTemplate creates a Template. Without options it allows
// DefaultMaxAttempts attempts with no delay between them.
func NewTemplate(opts ...Option) *Template {
	cfg := config{
		retryPolicy:   NewSimpleRetryPolicy(DefaultMaxAttempts),
		backOffPolicy: NoBackOffPolicy{},
		clock:         realClock{},
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sessions < 1 {
		cfg.sessions = DefaultSessionCapacity
	}
	sessions, err := simplelru.NewLRU[string, *session](cfg.sessions, nil)
	if err != nil {
		panic(err) // unreachable: capacity is positive
	}
	return &Template{cfg: cfg, sessions: sessions}
}

// Do executes fn with a Template built from opts.
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	_, err := NewTemplate(opts...).Execute(ctx, "", func(ctx context.Context, _ *State) (any, error) {
		return nil, fn(ctx)
	}, nil)
	return err
}

// SetRetryPolicy replaces the retry policy.
func (t *Template) SetRetryPolicy(p RetryPolicy) {
	t.cfg.retryPolicy = p
}

// SetBackOffPolicy replaces the backoff policy.
func (t *Template) SetBackOffPolicy(p BackOffPolicy) {
	t.cfg.backOffPolicy = p
}

// SetLogger replaces the logger.
func (t *Template) SetLogger(l zerolog.Logger) {
	t.cfg.logger = l
}

// RetryPolicy returns the current retry policy.
func (t *Template) RetryPolicy() RetryPolicy {
	return t.cfg.retryPolicy
}

// BackOffPolicy returns the current backoff policy.
func (t *Template) BackOffPolicy() BackOffPolicy {
	return t.cfg.backOffPolicy
}

// Pending returns the number of stateful retries in progress.
func (t *Template) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions.Len()
}

// Execute implements Operations.
func (t *Template) Execute(ctx context.Context, label string, cb Callback, recovery RecoveryCallback) (any, error) {
	s := newState(label, t.cfg.clock)
	seq := t.cfg.backOffPolicy.Start()

	for {
		result, delay, next := t.try(ctx, s, seq, cb)
		switch next {
		case succeeded:
			return result, nil
		case exhausted:
			return t.exhaust(ctx, s, recovery)
		case interrupted:
			return nil, s.LastErr
		}
		if err := t.pause(ctx, s, delay); err != nil {
			return nil, errors.Join(s.LastErr, err)
		}
	}
}

// ExecuteStateful implements Operations.
func (t *Template) ExecuteStateful(ctx context.Context, key, label string, cb Callback, recovery RecoveryCallback) (any, error) {
	sess := t.acquire(key, label)
	defer sess.mu.Unlock()

	result, delay, next := t.try(ctx, sess.state, sess.seq, cb)
	switch next {
	case succeeded:
		t.evict(key, sess)
		return result, nil
	case exhausted:
		t.evict(key, sess)
		return t.exhaust(ctx, sess.state, recovery)
	case interrupted:
		return nil, sess.state.LastErr
	}

	// Back off before handing the failure to the caller, so the next
	// invocation for this key happens no sooner than the policy allows.
	if err := t.pause(ctx, sess.state, delay); err != nil {
		return nil, errors.Join(sess.state.LastErr, err)
	}
	return nil, sess.state.LastErr
}

type outcome int

const (
	succeeded outcome = iota
	again
	exhausted
	interrupted
)

// try makes one attempt and decides what happens next.
func (t *Template) try(ctx context.Context, s *State, seq backoff.BackOff, cb Callback) (any, time.Duration, outcome) {
	t.cfg.logger.Debug().
		Str("label", s.Label).
		Int("attempt", s.Attempts+1).
		Msg("retry attempt")

	result, err := cb(ctx, s)
	if err == nil {
		s.record(nil)
		if t.cfg.onSuccess != nil {
			t.cfg.onSuccess(ctx, s)
		}
		return result, 0, succeeded
	}

	err, stopped := terminal(err)
	s.record(err)

	switch {
	case stopped:
		return nil, 0, exhausted
	case ctx.Err() != nil:
		return nil, 0, interrupted
	case !t.cfg.retryPolicy.CanRetry(s):
		return nil, 0, exhausted
	}

	delay := seq.NextBackOff()
	if delay == backoff.Stop {
		return nil, 0, exhausted
	}
	return nil, delay, again
}

func (t *Template) pause(ctx context.Context, s *State, delay time.Duration) error {
	if t.cfg.onRetry != nil {
		t.cfg.onRetry(ctx, s, delay)
	}
	if err := t.cfg.clock.Sleep(ctx, delay); err != nil {
		t.cfg.logger.Debug().
			Str("label", s.Label).
			Int("attempt", s.Attempts).
			Err(err).
			Msg("retry interrupted")
		return err
	}
	return nil
}

func (t *Template) exhaust(ctx context.Context, s *State, recovery RecoveryCallback) (any, error) {
	s.Exhausted = true
	t.cfg.logger.Warn().
		Str("label", s.Label).
		Int("attempts", s.Attempts).
		Err(s.LastErr).
		Msg("retry exhausted")
	if t.cfg.onExhausted != nil {
		t.cfg.onExhausted(ctx, s)
	}
	if recovery != nil {
		return recovery(ctx, s)
	}
	return nil, s.LastErr
}

// acquire returns the locked session for key. A session evicted while the
// caller waited for its lock is skipped, so every attempt is recorded on the
// session currently registered for the key.
func (t *Template) acquire(key, label string) *session {
	for {
		sess := t.session(key, label)
		sess.mu.Lock()
		if t.registered(key, sess) {
			return sess
		}
		sess.mu.Unlock()
	}
}

func (t *Template) session(key, label string) *session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sess, ok := t.sessions.Get(key); ok {
		return sess
	}
	if t.sessions.Len() >= t.cfg.sessions {
		if old, dropped, ok := t.sessions.RemoveOldest(); ok {
			t.cfg.logger.Warn().
				Str("key", old).
				Str("label", dropped.state.Label).
				Msg("stateful retry evicted")
		}
	}
	sess := &session{
		state: newState(label, t.cfg.clock),
		seq:   t.cfg.backOffPolicy.Start(),
	}
	t.sessions.Add(key, sess)
	return sess
}

func (t *Template) registered(key string, sess *session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.sessions.Peek(key)
	return ok && cur == sess
}

func (t *Template) evict(key string, sess *session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.sessions.Peek(key); ok && cur == sess {
		t.sessions.Remove(key)
	}
}

var _ Operations = (*Template)(nil)
