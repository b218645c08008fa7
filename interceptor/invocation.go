package interceptor

import "context"

// Invocation describes an intercepted method call.
type Invocation interface {
	// Method names the invoked method.
	Method() string
	// Arguments returns the call arguments.
	Arguments() []any
	// Proceed runs the underlying method. It is called once per attempt.
	Proceed(ctx context.Context) (any, error)
}

// MethodInterceptor wraps an Invocation.
type MethodInterceptor interface {
	Invoke(ctx context.Context, inv Invocation) (any, error)
}

// MethodFunc is the underlying method of a MethodInvocation.
type MethodFunc func(ctx context.Context, args []any) (any, error)

// MethodInvocation is the default Invocation.
type MethodInvocation struct {
	method string
	args   []any
	fn     MethodFunc
}

// NewInvocation returns an Invocation of fn with the given arguments.
func NewInvocation(method string, fn MethodFunc, args ...any) *MethodInvocation {
	return &MethodInvocation{method: method, args: args, fn: fn}
}

// Method implements Invocation.
func (m *MethodInvocation) Method() string { return m.method }

// Arguments implements Invocation.
func (m *MethodInvocation) Arguments() []any { return m.args }

// Proceed implements Invocation.
func (m *MethodInvocation) Proceed(ctx context.Context) (any, error) {
	return m.fn(ctx, m.args)
}
