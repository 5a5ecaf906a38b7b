package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestLimiter_BurstPerKey(t *testing.T) {
	l := New(0.001, 2)

	require.NoError(t, l.Wait(shortCtx(t), "a"))
	require.NoError(t, l.Wait(shortCtx(t), "a"))
	assert.Error(t, l.Wait(shortCtx(t), "a"))

	// separate bucket
	assert.NoError(t, l.Wait(shortCtx(t), "b"))
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0, 1)
	ctx := shortCtx(t)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx, "a"))
	}
}

func TestLimiter_WaitHonoursCancel(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, "a"))
}

func TestLimiter_WaitReturnsWhenTokenAvailable(t *testing.T) {
	l := New(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, l.Wait(ctx, "a"))
	assert.NoError(t, l.Wait(ctx, "a"))
}
