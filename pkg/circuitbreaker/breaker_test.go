package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFail = errors.New("downstream failure")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests:      5,
		Timeout:          timeout,
		FailureThreshold: 3,
		SuccessThreshold: 2,
	})
}

func trip(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), func() error { return errFail })
		require.ErrorIs(t, err, errFail)
	}
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().Successes)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(time.Minute)

	trip(t, cb)
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	cb := newTestBreaker(time.Minute)
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errFail })
	cb.Execute(ctx, func() error { return errFail })
	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	cb.Execute(ctx, func() error { return errFail })
	cb.Execute(ctx, func() error { return errFail })

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	trip(t, cb)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	require.NoError(t, cb.Execute(ctx, func() error { return nil }))

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	trip(t, cb)
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(ctx, func() error { return errFail }), errFail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests:      1,
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 3,
		SuccessThreshold: 2,
	})
	ctx := context.Background()

	trip(t, cb)
	time.Sleep(20 * time.Millisecond)

	blocked := make(chan struct{})
	release := make(chan struct{})
	go cb.Execute(ctx, func() error {
		close(blocked)
		<-release
		return nil
	})

	<-blocked
	err := cb.Execute(ctx, func() error { return nil })
	assert.ErrorIs(t, err, ErrTooManyRequests)
	close(release)
}

func TestBreakerRejectsCancelledContext(t *testing.T) {
	cb := newTestBreaker(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("llm", Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	ctx := context.Background()
	cb.Execute(ctx, func() error { return errFail })
	cb.Execute(ctx, func() error { return errFail })

	require.Equal(t, []string{"closed->open"}, transitions)
}
