package fetchcache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

type countingFetcher struct {
	calls []string
	err   error
}

func (f *countingFetcher) fetch(_ context.Context, key string) (model.Resource, error) {
	f.calls = append(f.calls, key)
	if f.err != nil {
		return model.Resource{}, f.err
	}
	return model.Resource{Content: "content of " + key, Metadata: map[string]any{"url": key}}, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCache() *Cache {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func TestGetOrFetch_SameKeyFetchesOnce(t *testing.T) {
	c := newTestCache()
	f := &countingFetcher{}
	ctx := context.Background()

	first := c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	second := c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)

	assert.Equal(t, []string{"https://a"}, f.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "content of https://a", second.Content)
	assert.Equal(t, fixedNow, second.FetchedAt)
	assert.Equal(t, 1, c.Fetches())
}

func TestGetOrFetch_NewKeyReplacesSlot(t *testing.T) {
	c := newTestCache()
	f := &countingFetcher{}
	ctx := context.Background()

	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	res := c.GetOrFetch(ctx, SlotWebpage, "https://b", f.fetch)
	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)

	assert.Equal(t, []string{"https://a", "https://b", "https://a"}, f.calls)
	assert.Equal(t, "content of https://b", res.Content)
	assert.Equal(t, "https://a", c.Key(SlotWebpage))
}

func TestGetOrFetch_SlotsAreIndependent(t *testing.T) {
	c := newTestCache()
	f := &countingFetcher{}
	ctx := context.Background()

	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	c.GetOrFetch(ctx, SlotPDF, "https://a/doc.pdf", f.fetch)
	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)

	assert.Len(t, f.calls, 2)
	assert.Equal(t, "https://a", c.Key(SlotWebpage))
	assert.Equal(t, "https://a/doc.pdf", c.Key(SlotPDF))
}

func TestGetOrFetch_FailureSentinel(t *testing.T) {
	c := newTestCache()
	f := &countingFetcher{err: errors.New("dial tcp: timeout")}
	ctx := context.Background()

	res := c.GetOrFetch(ctx, SlotWebpage, "https://down", f.fetch)
	require.True(t, res.IsFailure())
	assert.Equal(t, "dial tcp: timeout", res.FailureReason())

	// same key: recorded, no refetch
	again := c.GetOrFetch(ctx, SlotWebpage, "https://down", f.fetch)
	assert.True(t, again.IsFailure())
	assert.Len(t, f.calls, 1)

	// different key: fetched, the failure is never served for it
	f.err = nil
	ok := c.GetOrFetch(ctx, SlotWebpage, "https://up", f.fetch)
	assert.False(t, ok.IsFailure())
	assert.Len(t, f.calls, 2)
}

func TestClear(t *testing.T) {
	c := newTestCache()
	f := &countingFetcher{}
	ctx := context.Background()

	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	c.GetOrFetch(ctx, SlotPDF, "upload:x.pdf#1:d", f.fetch)

	c.Clear(SlotWebpage)
	assert.Empty(t, c.Key(SlotWebpage))
	assert.Equal(t, "upload:x.pdf#1:d", c.Key(SlotPDF))

	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	assert.Len(t, f.calls, 3)

	c.ClearAll()
	_, _, ok := c.Peek(SlotWebpage)
	assert.False(t, ok)
	_, _, ok = c.Peek(SlotPDF)
	assert.False(t, ok)
}

func TestGetOrFetch_SupersededWriteIsDropped(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(_ context.Context, key string) (model.Resource, error) {
		close(started)
		<-release
		return model.Resource{Content: "stale " + key}, nil
	}
	fast := func(_ context.Context, key string) (model.Resource, error) {
		return model.Resource{Content: "fresh " + key}, nil
	}

	done := make(chan model.Resource)
	go func() { done <- c.GetOrFetch(ctx, SlotWebpage, "https://old", slow) }()
	<-started

	c.GetOrFetch(ctx, SlotWebpage, "https://new", fast)
	close(release)
	stale := <-done

	assert.Equal(t, "stale https://old", stale.Content, "caller still gets its own result")
	res, key, ok := c.Peek(SlotWebpage)
	require.True(t, ok)
	assert.Equal(t, "https://new", key)
	assert.Equal(t, "fresh https://new", res.Content)
}

func TestGetOrFetch_CancelledTurnDoesNotWrite(t *testing.T) {
	c := newTestCache()
	ctx, cancel := context.WithCancel(context.Background())

	res := c.GetOrFetch(ctx, SlotPDF, "https://a/doc.pdf", func(ctx context.Context, key string) (model.Resource, error) {
		cancel()
		return model.Resource{}, ctx.Err()
	})

	assert.True(t, res.IsFailure())
	assert.Empty(t, c.Key(SlotPDF))
}

func TestClear_DropsPendingWrite(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	res := c.GetOrFetch(ctx, SlotWebpage, "https://a", func(context.Context, string) (model.Resource, error) {
		c.Clear(SlotWebpage)
		return model.Resource{Content: "late"}, nil
	})

	assert.Equal(t, "late", res.Content)
	assert.Empty(t, c.Key(SlotWebpage))
}

func TestGetOrFetch_LogsFetchCountOnMiss(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	c := newTestCache()
	f := &countingFetcher{}
	ctx := context.Background()
	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	c.GetOrFetch(ctx, SlotWebpage, "https://a", f.fetch)
	c.GetOrFetch(ctx, SlotWebpage, "https://b", f.fetch)

	out := buf.String()
	assert.Contains(t, out, `"message":"Fetch cache miss"`)
	assert.Contains(t, out, `"fetches":1`)
	assert.Contains(t, out, `"fetches":2`)
	assert.NotContains(t, out, `"fetches":3`)
	assert.Equal(t, 2, c.Fetches())
}
