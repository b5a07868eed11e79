// Package tasks runs background jobs launched by users and keeps at most one
// job per user and command in flight.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Guard grants exclusive, expiring claims on keys.
type Guard interface {
	// Acquire claims key for ttl. It returns false when key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryGuard keeps claims in process memory.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemoryGuard returns an empty MemoryGuard
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Acquire implements Guard
func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if until, ok := g.held[key]; ok && now.Before(until) {
		return false, nil
	}
	g.held[key] = now.Add(ttl)
	return true, nil
}

// Release implements Guard
func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

// RedisGuard keeps claims in redis, so they hold across server instances.
type RedisGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisGuard connects to redis and checks the connection
func NewRedisGuard(ctx context.Context, opts *redis.Options) (*RedisGuard, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis unavailable")
	}
	return &RedisGuard{
		client: client,
		prefix: "plataforma:tarea:",
	}, nil
}

// Acquire implements Guard
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, "1", ttl).Result()
	return ok, errors.WithStack(err)
}

// Release implements Guard
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return errors.WithStack(g.client.Del(ctx, g.prefix+key).Err())
}

// Close closes the redis client
func (g *RedisGuard) Close() error {
	return g.client.Close()
}
