package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiter_RedisNil_Allows(t *testing.T) {
	l := NewFixedWindowLimiter(nil)

	d, err := l.AllowFixedWindow(context.Background(), "k", 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected allowed when redis disabled")
	}
	if d.Remaining != 10 {
		t.Fatalf("unexpected remaining: %d", d.Remaining)
	}
}

func TestFixedWindowLimiter_NonPositiveLimit_Allows(t *testing.T) {
	l := NewFixedWindowLimiter(nil)

	for _, limit := range []int{0, -5} {
		d, _ := l.AllowFixedWindow(context.Background(), "k", limit, time.Minute)
		if !d.Allowed {
			t.Fatalf("limit=%d should allow", limit)
		}
	}
}

func TestFixedWindowLimiter_CountsAndBlocks(t *testing.T) {
	c, _ := newMiniClient(t)
	l := NewFixedWindowLimiter(c)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.AllowFixedWindow(ctx, "rl:login:ip:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i)
		assert.Equal(t, 3-i, d.Remaining)
		assert.Equal(t, i, d.Count)
	}

	d, err := l.AllowFixedWindow(ctx, "rl:login:ip:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)

	// other keys are independent
	d, err = l.AllowFixedWindow(ctx, "rl:login:ip:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_WindowExpiry_Resets(t *testing.T) {
	c, mr := newMiniClient(t)
	l := NewFixedWindowLimiter(c)
	ctx := context.Background()

	_, err := l.AllowFixedWindow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	d, _ := l.AllowFixedWindow(ctx, "k", 1, time.Minute)
	require.False(t, d.Allowed)

	mr.FastForward(61 * time.Second)

	d, err = l.AllowFixedWindow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_RedisDown_ReturnsError(t *testing.T) {
	c, mr := newMiniClient(t)
	l := NewFixedWindowLimiter(c)
	mr.Close()

	_, err := l.AllowFixedWindow(context.Background(), "k", 1, time.Minute)
	require.Error(t, err)
}
