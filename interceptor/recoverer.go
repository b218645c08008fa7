package interceptor

import "context"

// Recoverer is a fallback for an intercepted method. It receives the original
// arguments and the error that caused the fallback.
type Recoverer interface {
	Recover(ctx context.Context, args []any, cause error) (any, error)
}

// RecovererFunc is an adapter that allows a function to be used as a
// Recoverer.
type RecovererFunc func(ctx context.Context, args []any, cause error) (any, error)

// Recover implements Recoverer.
func (f RecovererFunc) Recover(ctx context.Context, args []any, cause error) (any, error) {
	return f(ctx, args, cause)
}
