// Package redisstore is the shared counter store. Redis INCR gives the
// per-key atomicity the gate needs across instances; the window is a key
// TTL set on the first hit.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evalion/evalion/internal/ratelimit"
)

const defaultTimeout = 500 * time.Millisecond

type Store struct {
	client  *redis.Client
	timeout time.Duration
	now     func() time.Time
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// New connects and pings so an unreachable Redis is caught at startup,
// where the caller can fall back to the in-memory store.
func New(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{client: client, timeout: timeout, now: time.Now}, nil
}

// NewWithClient wires an existing client, used by tests against miniredis.
func NewWithClient(client *redis.Client, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{client: client, timeout: defaultTimeout, now: now}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Increment(ctx context.Context, key string, window time.Duration) (ratelimit.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return ratelimit.Snapshot{}, fmt.Errorf("increment %q: %w", key, err)
	}

	// PTTL is negative when the key is new or has no expiry; either way
	// this hit opens a fresh window.
	remaining, err := ttl.Result()
	if err != nil || remaining <= 0 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return ratelimit.Snapshot{}, fmt.Errorf("set window for %q: %w", key, err)
		}
		remaining = window
	}

	return ratelimit.Snapshot{
		Count:   incr.Val(),
		ResetAt: s.now().Add(remaining),
	}, nil
}
