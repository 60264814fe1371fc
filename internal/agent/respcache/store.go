package respcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Store is a response cache shared by all sessions. Implementations must be
// safe for concurrent use and expire entries after their TTL. Reads only need
// to eventually reflect the latest successful write.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ================ In-process store ================

// MemoryStore keeps entries in process memory via go-cache.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a store whose entries default to ttl and are swept
// every cleanup interval.
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(ttl, cleanup)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cache value type %T", v)
	}
	return b, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len returns the number of unexpired items.
func (m *MemoryStore) Len() int {
	return m.c.ItemCount()
}

// ================ Redis store ================

// RedisStore keeps entries in Redis with per-key expiry.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	if r.prefix == "" {
		return "respcache:" + k
	}
	return r.prefix + ":respcache:" + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read response cache from redis")
		return nil, false, errx.WrapRedis(err)
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Dur("ttl", ttl).Msg("failed to write response cache to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete response cache key from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
