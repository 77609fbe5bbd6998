// Package redis holds the shared counters behind rate limiting and the
// verification resend cooldown.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key this service writes, so a shared Redis
// can host other tenants.
const keyPrefix = "coursehub:"

const (
	dialTimeout = 2 * time.Second
	ioTimeout   = time.Second
	pingTimeout = 2 * time.Second
)

type Client struct {
	rdb *goredis.Client
}

// New does not dial; the first command (usually Ping) does.
func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
		}),
	}
}

// Ping backs the readiness check and the startup probe.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func namespaced(key string) string { return keyPrefix + key }
