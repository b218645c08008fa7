package interceptor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/bjaus/retrytx/retry"
)

// KeyGenerator identifies the retry an invocation belongs to.
type KeyGenerator func(inv Invocation) string

// DefaultKey keys an invocation by its method name and a hash of its
// arguments, so repeated invocations with equal arguments share retry state.
func DefaultKey(inv Invocation) string {
	sum := xxh3.HashString(fmt.Sprintf("%#v", inv.Arguments()))
	return inv.Method() + ":" + strconv.FormatUint(sum, 16)
}

// StatefulInterceptor makes one attempt per Invoke and keeps retry state
// between invocations with the same key. A failed attempt is returned to the
// caller, who rolls back and invokes again; once the policy gives up, the
// recoverer supplies the result.
type StatefulInterceptor struct {
	hooks
	operations retry.Operations
	keys       KeyGenerator
}

// NewStatefulInterceptor returns an interceptor using a default Template and
// DefaultKey.
func NewStatefulInterceptor() *StatefulInterceptor {
	return &StatefulInterceptor{
		hooks:      hooks{logger: zerolog.Nop()},
		operations: retry.NewTemplate(),
		keys:       DefaultKey,
	}
}

// SetRetryOperations sets the executor.
func (i *StatefulInterceptor) SetRetryOperations(ops retry.Operations) {
	i.operations = ops
}

// RetryOperations returns the executor.
func (i *StatefulInterceptor) RetryOperations() retry.Operations {
	return i.operations
}

// SetKeyGenerator sets how invocations are keyed.
func (i *StatefulInterceptor) SetKeyGenerator(kg KeyGenerator) {
	i.keys = kg
}

// Invoke implements MethodInterceptor.
func (i *StatefulInterceptor) Invoke(ctx context.Context, inv Invocation) (any, error) {
	key := i.keys(inv)
	log := i.invocationLogger(inv)
	if log.GetLevel() != zerolog.Disabled {
		log = log.With().Str("key", key).Logger()
	}
	return i.operations.ExecuteStateful(ctx, key, i.labelFor(inv), proceed(inv), i.recovery(inv, log))
}

// StatefulBuilder builds a StatefulInterceptor. It shares every configuration
// rule of Builder and adds the key generator.
type StatefulBuilder struct {
	*Builder[*StatefulInterceptor]
	keys KeyGenerator
}

// Stateful returns a builder for a StatefulInterceptor.
func Stateful() *StatefulBuilder {
	sb := &StatefulBuilder{keys: DefaultKey}
	sb.Builder = Custom(sb.assemble)
	return sb
}

// NewStateful builds a StatefulInterceptor from opts.
func NewStateful(opts ...Option) (*StatefulInterceptor, error) {
	b := Stateful()
	if err := b.Apply(opts...); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// SetKeyGenerator sets how invocations are keyed. Nil restores DefaultKey.
func (sb *StatefulBuilder) SetKeyGenerator(kg KeyGenerator) {
	if kg == nil {
		kg = DefaultKey
	}
	sb.keys = kg
}

func (sb *StatefulBuilder) assemble(a Assembly) *StatefulInterceptor {
	i := NewStatefulInterceptor()
	i.SetRetryOperations(a.Operations)
	i.SetKeyGenerator(sb.keys)
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

var _ MethodInterceptor = (*StatefulInterceptor)(nil)
