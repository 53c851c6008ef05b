// Package redisstore holds the Redis-backed implementations used when
// redis.url is configured.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revoked token IDs.
const keyPrefix = "taskpulse:revoked:"

// TokenDenylist stores revoked token IDs as Redis keys that expire together
// with the token, so revocations are shared by every API instance.
type TokenDenylist struct {
	client *redis.Client
	logger *slog.Logger
}

// NewClient parses a redis:// URL and verifies the server answers a PING.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewTokenDenylist wraps an existing client.
func NewTokenDenylist(client *redis.Client, logger *slog.Logger) *TokenDenylist {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenDenylist{
		client: client,
		logger: logger.With(slog.String("component", "token_denylist")),
	}
}

// Add marks jti as revoked for ttl. Non-positive TTLs are ignored.
func (d *TokenDenylist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		d.logger.Error("failed to add token to denylist", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add token to denylist: %w", err)
	}
	return nil
}

// Contains reports whether jti is currently revoked.
func (d *TokenDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, keyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
}
