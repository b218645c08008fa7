package interceptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_next(t *testing.T) {
	var p progress
	assert.False(t, p.templateAltered())

	p, err := p.next(callBackOffPolicy)
	require.NoError(t, err)
	assert.True(t, p.templateAltered())
	assert.Equal(t, callBackOffPolicy, p.enteredBy)
	assert.Equal(t, slotCustom, p.backOff)

	p, err = p.next(callMaxAttempts)
	require.NoError(t, err)
	assert.Equal(t, callBackOffPolicy, p.enteredBy, "first call keeps the route")
	assert.Equal(t, slotShortcut, p.retry)
	assert.Equal(t, callMaxAttempts, p.retryBy)
}

func TestProgress_rejectionKeepsState(t *testing.T) {
	p, err := progress{}.next(callBackOffOptions)
	require.NoError(t, err)
	before := p

	got, err := p.next(callBackOffPolicy)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, got)
	assert.Equal(t, before, p)
}

func TestProgress_operationsRoute(t *testing.T) {
	p, err := progress{}.next(callRetryOperations)
	require.NoError(t, err)
	assert.Equal(t, routeOperations, p.route)
	assert.False(t, p.templateAltered())

	p, err = p.next(callRetryOperations)
	require.NoError(t, err)

	for _, c := range []call{callMaxAttempts, callBackOffOptions, callRetryPolicy, callBackOffPolicy} {
		_, err := p.next(c)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict, string(c))
		assert.Equal(t, string(callRetryOperations), conflict.Prior)
	}
}
