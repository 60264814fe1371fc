package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	// URL is optional; without it every store stays in process.
	URL          string `split_words:"true"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
	// KeyPrefix namespaces every key the router writes (sessions, usage, response cache).
	KeyPrefix string `split_words:"true" default:"turnrouter"`
}

// Options converts the config into go-redis options without dialing.
func (r *Config) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second
	return opts, nil
}

// New builds a client and pings it within the dial timeout.
func (r *Config) New(ctx context.Context) (*redis.Client, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key joins parts under the configured prefix, e.g. Key("usage", id) -> "turnrouter:usage:<id>".
func (r *Config) Key(parts ...string) string {
	k := r.KeyPrefix
	for _, p := range parts {
		if k == "" {
			k = p
			continue
		}
		k += ":" + p
	}
	return k
}

// Enabled reports whether a Redis URL is configured.
func (r *Config) Enabled() bool {
	return r.URL != ""
}
