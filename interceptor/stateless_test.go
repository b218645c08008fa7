package interceptor_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/retrytx/interceptor"
	"github.com/bjaus/retrytx/retry"
)

var errTransient = errors.New("transient failure")

type mockOperations struct {
	mock.Mock
}

func (m *mockOperations) Execute(ctx context.Context, label string, cb retry.Callback, recovery retry.RecoveryCallback) (any, error) {
	args := m.Called(ctx, label, cb, recovery)
	return args.Get(0), args.Error(1)
}

func (m *mockOperations) ExecuteStateful(ctx context.Context, key, label string, cb retry.Callback, recovery retry.RecoveryCallback) (any, error) {
	args := m.Called(ctx, key, label, cb, recovery)
	return args.Get(0), args.Error(1)
}

// flaky returns an invocation of a method that fails until the given call.
func flaky(method string, until int, calls *int, args ...any) *interceptor.MethodInvocation {
	return interceptor.NewInvocation(method, func(ctx context.Context, args []any) (any, error) {
		*calls++
		if *calls < until {
			return nil, errTransient
		}
		return args[0], nil
	}, args...)
}

func TestOperationsInterceptor_Invoke(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		ic, err := interceptor.NewStateless(interceptor.MaxAttempts(3))
		require.NoError(t, err)

		calls := 0
		v, err := ic.Invoke(context.Background(), flaky("Charge", 3, &calls, "order-1"))

		require.NoError(t, err)
		assert.Equal(t, "order-1", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error without recoverer", func(t *testing.T) {
		ic, err := interceptor.NewStateless(interceptor.MaxAttempts(2))
		require.NoError(t, err)

		calls := 0
		_, err = ic.Invoke(context.Background(), flaky("Charge", 100, &calls, "order-1"))

		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, calls)
	})

	t.Run("recoverer receives arguments and cause", func(t *testing.T) {
		var gotArgs []any
		var gotCause error
		ic, err := interceptor.NewStateless(
			interceptor.MaxAttempts(2),
			interceptor.WithRecoverer(interceptor.RecovererFunc(func(ctx context.Context, args []any, cause error) (any, error) {
				gotArgs, gotCause = args, cause
				return "recovered", nil
			})),
		)
		require.NoError(t, err)

		calls := 0
		v, err := ic.Invoke(context.Background(), flaky("Charge", 100, &calls, "order-1", 42))

		require.NoError(t, err)
		assert.Equal(t, "recovered", v)
		assert.Equal(t, []any{"order-1", 42}, gotArgs)
		assert.ErrorIs(t, gotCause, errTransient)
	})

	t.Run("terminal error goes straight to recoverer", func(t *testing.T) {
		recovered := 0
		ic, err := interceptor.NewStateless(
			interceptor.MaxAttempts(5),
			interceptor.WithRecoverer(interceptor.RecovererFunc(func(context.Context, []any, error) (any, error) {
				recovered++
				return nil, nil
			})),
		)
		require.NoError(t, err)

		calls := 0
		_, err = ic.Invoke(context.Background(), interceptor.NewInvocation("Charge", func(context.Context, []any) (any, error) {
			calls++
			return nil, retry.Stop(errTransient)
		}))

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, recovered)
	})
}

func TestOperationsInterceptor_maxAttemptsIsLiteral(t *testing.T) {
	for _, n := range []int{0, -1, 1} {
		b := interceptor.Stateless()
		require.NoError(t, b.SetMaxAttempts(n))

		calls := 0
		_, err := b.Build().Invoke(context.Background(), flaky("Charge", 100, &calls, "order-1"))

		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls, "MaxAttempts(%d) allows a single attempt", n)
	}
}

func TestOperationsInterceptor_customOperations(t *testing.T) {
	ops := new(mockOperations)
	ops.On("Execute", mock.Anything, "billing", mock.Anything, mock.Anything).Return("done", nil).Once()

	ic, err := interceptor.NewStateless(
		interceptor.RetryOperations(ops),
		interceptor.Label("billing"),
	)
	require.NoError(t, err)

	v, err := ic.Invoke(context.Background(), interceptor.NewInvocation("Charge", func(context.Context, []any) (any, error) {
		t.Fatal("mock operations never proceed")
		return nil, nil
	}))

	require.NoError(t, err)
	assert.Equal(t, "done", v)
	ops.AssertExpectations(t)
}

func TestOperationsInterceptor_labelDefaultsToMethod(t *testing.T) {
	ops := new(mockOperations)
	ops.On("Execute", mock.Anything, "Refund", mock.Anything, mock.Anything).Return(nil, nil).Once()

	ic, err := interceptor.NewStateless(interceptor.RetryOperations(ops))
	require.NoError(t, err)

	_, err = ic.Invoke(context.Background(), interceptor.NewInvocation("Refund", nil))
	require.NoError(t, err)
	ops.AssertExpectations(t)
}

func TestOperationsInterceptor_recoveryOnlyWithRecoverer(t *testing.T) {
	ops := new(mockOperations)
	ops.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	b := interceptor.Stateless()
	require.NoError(t, b.SetRetryOperations(ops))
	_, _ = b.Build().Invoke(context.Background(), interceptor.NewInvocation("Charge", nil))

	recovery, ok := ops.Calls[0].Arguments.Get(3).(retry.RecoveryCallback)
	require.True(t, ok)
	assert.Nil(t, recovery)
}

func TestOperationsInterceptor_Rollback(t *testing.T) {
	t.Run("invokes rollbacker", func(t *testing.T) {
		var gotArgs []any
		ic, err := interceptor.NewStateless(
			interceptor.WithRollback(interceptor.RecovererFunc(func(ctx context.Context, args []any, cause error) (any, error) {
				gotArgs = args
				return "compensated", cause
			})),
		)
		require.NoError(t, err)

		v, err := ic.Rollback(context.Background(), interceptor.NewInvocation("Reserve", nil, "sku-9"), errTransient)

		assert.Equal(t, "compensated", v)
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, []any{"sku-9"}, gotArgs)
	})

	t.Run("no-op without rollbacker", func(t *testing.T) {
		ic := interceptor.Stateless().Build()

		v, err := ic.Rollback(context.Background(), interceptor.NewInvocation("Reserve", nil), errTransient)

		assert.NoError(t, err)
		assert.Nil(t, v)
	})
}

func TestOperationsInterceptor_logging(t *testing.T) {
	var buf bytes.Buffer
	ic, err := interceptor.NewStateless(
		interceptor.MaxAttempts(2),
		interceptor.Label("inventory"),
		interceptor.Logger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
		interceptor.WithRecoverer(interceptor.RecovererFunc(func(context.Context, []any, error) (any, error) {
			return nil, nil
		})),
	)
	require.NoError(t, err)

	calls := 0
	_, err = ic.Invoke(context.Background(), flaky("Reserve", 100, &calls, "sku-1"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"retry interceptor built"`)
	assert.Contains(t, out, `"message":"retry exhausted"`)
	assert.Contains(t, out, `"message":"recovering invocation"`)
	assert.Contains(t, out, `"label":"inventory"`)
	assert.Contains(t, out, `"method":"Reserve"`)
	assert.Contains(t, out, `"invocation_id":`)
}
