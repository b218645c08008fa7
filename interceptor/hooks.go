package interceptor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bjaus/retrytx/retry"
)

// hooks holds the fallback hooks and naming shared by interceptor flavors.
type hooks struct {
	recoverer  Recoverer
	rollbacker Recoverer
	label      string
	logger     zerolog.Logger
}

// SetRecoverer sets the hook that runs when retries are exhausted.
func (h *hooks) SetRecoverer(r Recoverer) { h.recoverer = r }

// SetRollbacker sets the hook that runs on rollback.
func (h *hooks) SetRollbacker(r Recoverer) { h.rollbacker = r }

// SetLabel sets the label. Without one, the method name is used.
func (h *hooks) SetLabel(label string) { h.label = label }

// SetLogger sets the logger.
func (h *hooks) SetLogger(l zerolog.Logger) { h.logger = l }

// Recoverer returns the recovery hook, or nil.
func (h *hooks) Recoverer() Recoverer { return h.recoverer }

// Rollbacker returns the rollback hook, or nil.
func (h *hooks) Rollbacker() Recoverer { return h.rollbacker }

// Label returns the configured label.
func (h *hooks) Label() string { return h.label }

// Rollback runs the rollback hook for inv. Without a hook it does nothing.
func (h *hooks) Rollback(ctx context.Context, inv Invocation, cause error) (any, error) {
	log := h.invocationLogger(inv)
	if h.rollbacker == nil {
		log.Debug().Err(cause).Msg("no rollback hook")
		return nil, nil
	}
	log.Info().Err(cause).Msg("rolling back invocation")
	return h.rollbacker.Recover(ctx, inv.Arguments(), cause)
}

func (h *hooks) labelFor(inv Invocation) string {
	if h.label != "" {
		return h.label
	}
	return inv.Method()
}

func (h *hooks) invocationLogger(inv Invocation) zerolog.Logger {
	if h.logger.GetLevel() == zerolog.Disabled {
		return h.logger
	}
	return h.logger.With().
		Str("label", h.labelFor(inv)).
		Str("method", inv.Method()).
		Str("invocation_id", uuid.NewString()).
		Logger()
}

// recovery adapts the recoverer to the executor; nil without one.
func (h *hooks) recovery(inv Invocation, log zerolog.Logger) retry.RecoveryCallback {
	if h.recoverer == nil {
		return nil
	}
	return func(ctx context.Context, s *retry.State) (any, error) {
		log.Info().
			Int("attempts", s.Attempts).
			Err(s.LastErr).
			Msg("recovering invocation")
		return h.recoverer.Recover(ctx, inv.Arguments(), s.LastErr)
	}
}

func proceed(inv Invocation) retry.Callback {
	return func(ctx context.Context, _ *retry.State) (any, error) {
		return inv.Proceed(ctx)
	}
}
