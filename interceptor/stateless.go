package interceptor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bjaus/retrytx/retry"
)

// OperationsInterceptor retries each invocation in place: Invoke returns only
// once the invocation succeeded, was recovered, or failed for good.
type OperationsInterceptor struct {
	hooks
	operations retry.Operations
}

// NewOperationsInterceptor returns an interceptor using a default Template.
func NewOperationsInterceptor() *OperationsInterceptor {
	return &OperationsInterceptor{
		hooks:      hooks{logger: zerolog.Nop()},
		operations: retry.NewTemplate(),
	}
}

func assembleStateless(a Assembly) *OperationsInterceptor {
	i := NewOperationsInterceptor()
	i.SetRetryOperations(a.Operations)
	i.SetLogger(a.Logger)
	if a.Recoverer != nil {
		i.SetRecoverer(a.Recoverer)
	}
	if a.Rollbacker != nil {
		i.SetRollbacker(a.Rollbacker)
	}
	if a.Label != "" {
		i.SetLabel(a.Label)
	}
	return i
}

// SetRetryOperations sets the executor.
func (i *OperationsInterceptor) SetRetryOperations(ops retry.Operations) {
	i.operations = ops
}

// RetryOperations returns the executor.
func (i *OperationsInterceptor) RetryOperations() retry.Operations {
	return i.operations
}

// Invoke implements MethodInterceptor.
func (i *OperationsInterceptor) Invoke(ctx context.Context, inv Invocation) (any, error) {
	log := i.invocationLogger(inv)
	return i.operations.Execute(ctx, i.labelFor(inv), proceed(inv), i.recovery(inv, log))
}

var _ MethodInterceptor = (*OperationsInterceptor)(nil)
