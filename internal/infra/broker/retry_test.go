package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestExecutor registra los sleeps en vez de dormir de verdad.
func newTestExecutor(p Policy, slept *[]time.Duration) *Executor {
	e := NewExecutor(p, zap.NewNop())
	e.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return e
}

func TestExecutor_FailsThenSucceeds(t *testing.T) {
	// ARRANGE: la operación falla 3 veces y luego funciona.
	var slept []time.Duration
	e := newTestExecutor(Policy{MaxAttempts: 5, InitialDelay: 1 * time.Second, MaxDelay: 30 * time.Second}, &slept)

	calls := 0
	op := func() error {
		calls++
		if calls <= 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	// ACT
	err := e.Do(context.Background(), "connect", op)

	// ASSERT: k fallos → k+1 invocaciones y sleeps min(initial*2^i, max).
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, slept)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	e := newTestExecutor(Policy{MaxAttempts: 3, InitialDelay: 1 * time.Second, MaxDelay: 30 * time.Second}, &slept)

	lastErr := errors.New("broker unreachable")
	calls := 0

	err := e.Do(context.Background(), "connect", func() error {
		calls++
		return lastErr
	})

	// El último error se propaga sin envolver; no se duerme tras el último intento.
	assert.Same(t, lastErr, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestExecutor_DelayCappedByMax(t *testing.T) {
	p := Policy{MaxAttempts: 10, InitialDelay: 1 * time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, 1*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 5*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(40)) // overflow del shift → cap
}

func TestExecutor_PermanentErrorNotRetried(t *testing.T) {
	var slept []time.Duration
	e := newTestExecutor(Policy{MaxAttempts: 5, InitialDelay: 1 * time.Second, MaxDelay: 30 * time.Second}, &slept)

	cause := errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'")
	calls := 0

	err := e.Do(context.Background(), "declare exchange", func() error {
		calls++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: 5, InitialDelay: 10 * time.Second, MaxDelay: 30 * time.Second}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Do(ctx, "connect", func() error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
