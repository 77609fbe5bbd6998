package redis

import (
	"context"
	"time"
)

// Throttle allows Limit hits per Window for a key. It backs the
// verification-code resend cooldown.
type Throttle struct {
	limiter *FixedWindowLimiter
	prefix  string
	limit   int
	window  time.Duration
}

func NewThrottle(l *FixedWindowLimiter, prefix string, limit int, window time.Duration) *Throttle {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Throttle{limiter: l, prefix: prefix, limit: limit, window: window}
}

func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	d, err := t.limiter.AllowFixedWindow(ctx, "cd:"+t.prefix+":"+key, t.limit, t.window)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}
