package usage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Counter is the stored (date, count) pair. Date is YYYY-MM-DD in UTC.
type Counter struct {
	Date  string
	Count int
}

// Store loads and saves one counter. A session owns its store exclusively.
type Store interface {
	Load(ctx context.Context) (Counter, error)
	Save(ctx context.Context, c Counter) error
}

// ================ In-memory ================

// MemoryStore holds the counter in process.
type MemoryStore struct {
	mu sync.Mutex
	c  Counter
}

// NewMemoryStore starts from c, usually the zero Counter.
func NewMemoryStore(c Counter) *MemoryStore {
	return &MemoryStore{c: c}
}

func (m *MemoryStore) Load(context.Context) (Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c, nil
}

func (m *MemoryStore) Save(_ context.Context, c Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = c
	return nil
}

// ================ Redis ================

// counterTTL keeps yesterday's hash around long enough to be reset, not forever.
const counterTTL = 48 * time.Hour

// RedisStore keeps the counter in a Redis hash {date, count}.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

// NewRedisStore stores the counter under key, e.g. "turnrouter:usage:<session>".
func NewRedisStore(rdb redis.Cmdable, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (Counter, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Counter{}, nil
		}
		logx.Error().Err(err).Str("key", r.key).Msg("failed to load usage counter from redis")
		return Counter{}, errx.WrapRedis(err)
	}
	c := Counter{Date: vals["date"]}
	if s, ok := vals["count"]; ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			logx.Warn().Str("key", r.key).Str("count", s).Msg("corrupt usage count, treating as zero")
			n = 0
		}
		c.Count = n
	}
	return c, nil
}

func (r *RedisStore) Save(ctx context.Context, c Counter) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key, "date", c.Date, "count", c.Count)
	pipe.Expire(ctx, r.key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", r.key).Msg("failed to save usage counter to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
