package respcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// FetchFunc matches fetchcache.FetchFunc without importing it.
type FetchFunc func(ctx context.Context, key string) (model.Resource, error)

// Cached wraps an external fetcher with the shared Store so independent
// sessions asking for the same source within ttl share one network call.
// Failed fetches are never stored. Store errors degrade to a direct fetch.
func Cached(store Store, namespace string, ttl time.Duration, fetch FetchFunc) FetchFunc {
	return func(ctx context.Context, key string) (model.Resource, error) {
		ck := namespace + ":" + key
		if b, ok, err := store.Get(ctx, ck); err != nil {
			logx.Warn().Err(err).Str("key", ck).Msg("response cache read failed, fetching directly")
		} else if ok {
			var res model.Resource
			if err := json.Unmarshal(b, &res); err == nil {
				logx.Debug().Str("key", ck).Msg("Response cache hit")
				return res, nil
			}
			logx.Warn().Str("key", ck).Msg("corrupt response cache entry, refetching")
		}

		res, err := fetch(ctx, key)
		if err != nil || res.IsFailure() {
			return res, err
		}
		b, err := json.Marshal(res)
		if err != nil {
			logx.Warn().Err(err).Str("key", ck).Msg("failed to marshal resource for response cache")
			return res, nil
		}
		if err := store.Set(ctx, ck, b, ttl); err != nil {
			logx.Warn().Err(err).Str("key", ck).Msg("response cache write failed")
		}
		return res, nil
	}
}
