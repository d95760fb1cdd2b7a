package request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAdmitsWithinWindow(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	l.Configure("orders", 200*time.Millisecond, 100)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(t.Context(), Weight{"orders": 10}))
	}
	assert.Less(t, time.Since(start), 150*time.Millisecond, "first 10 requests of 10 weight each must admit immediately under a 100 limit")
}

func TestLimiterSleepsWhenWindowExhausted(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	const window = 150 * time.Millisecond
	l.Configure("orders", window, 100)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(t.Context(), Weight{"orders": 10}))
	}
	require.NoError(t, l.Wait(t.Context(), Weight{"orders": 10}))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, window, "the 11th request must wait for the window to roll")
	assert.Less(t, elapsed, window+100*time.Millisecond, "must not oversleep by more than a small margin")
}

func TestLimiterUnconfiguredKindIsUnmetered(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	start := time.Now()
	require.NoError(t, l.Wait(t.Context(), Weight{"unused": 1000}))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterRejectsWeightAboveLimit(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	l.Configure("orders", time.Second, 5)
	err := l.Wait(t.Context(), Weight{"orders": 10})
	assert.ErrorIs(t, err, ErrRateLimitExhausted)
}

func TestLimiterRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	l.Configure("orders", time.Minute, 10)
	require.NoError(t, l.Wait(t.Context(), Weight{"orders": 10}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, Weight{"orders": 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterMultiKindAtomicAdmission(t *testing.T) {
	t.Parallel()
	l := NewLimiter()
	l.Configure("orders", time.Minute, 5)
	l.Configure("requests", time.Minute, 1000)

	require.NoError(t, l.Wait(t.Context(), Weight{"orders": 5}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, Weight{"orders": 1, "requests": 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "orders kind is exhausted so the combined request must not partially spend requests budget")
}
