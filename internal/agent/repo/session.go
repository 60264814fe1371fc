package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

type RedisSessionRepository struct {
	rdb      redis.Cmdable
	prefix   string
	ttl      time.Duration
	maxTurns int
}

// NewRedisSessionRepository stores transcripts under
// "<prefix>:session:<id>:messages". maxTurns > 0 trims the list to the last
// maxTurns*2 messages on every append.
func NewRedisSessionRepository(rdb redis.Cmdable, prefix string, ttl time.Duration, maxTurns int) *RedisSessionRepository {
	if prefix == "" {
		prefix = "turnrouter"
	}
	return &RedisSessionRepository{rdb: rdb, prefix: prefix, ttl: ttl, maxTurns: maxTurns}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:messages", r.prefix, sessionID)
}

// AddMessages appends messages to the transcript in one transaction, so a
// user message and its reply are stored together or not at all.
func (r *RedisSessionRepository) AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]any, 0, len(messages))
	for i, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("failed to marshal message")
			return fmt.Errorf("marshal message at index %d: %w", i, err)
		}
		rows = append(rows, b)
	}
	key := r.sessionKey(sessionID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, rows...)
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-r.maxTurns*2), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append session history to redis")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, key)
}

// touch extends the TTL of a session key.
func (r *RedisSessionRepository) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	ok, err := r.rdb.Expire(ctx, key, r.ttl).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
		return errx.WrapRedis(err)
	}
	if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
	}
	return nil
}

func (r *RedisSessionRepository) LoadHistory(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	key := r.sessionKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.ConversationHistory{SessionID: sessionID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (r *RedisSessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
