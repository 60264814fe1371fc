package fetchcache

import (
	"context"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Slot names a single cache entry. Each slot holds at most one resource.
type Slot string

const (
	SlotWebpage Slot = "webpage"
	SlotPDF     Slot = "pdf"
)

// FetchFunc loads the resource for key. Errors are turned into failure
// sentinel content by the cache.
type FetchFunc func(ctx context.Context, key string) (model.Resource, error)

type entry struct {
	key      string
	resource model.Resource
	// gen is the generation of the request that wrote this entry
	gen uint64
}

type slotState struct {
	entry *entry
	// latest is the generation of the most recent GetOrFetch miss
	latest uint64
}

// Cache memoises remote content per session and slot. It is owned by one
// session; the mutex only guards against a superseded turn finishing late.
type Cache struct {
	mu    sync.Mutex
	slots map[Slot]*slotState
	now   func() time.Time
	// fetches counts fetch invocations over the session; logged on each miss.
	fetches int
}

// Option customises a Cache.
type Option func(*Cache)

// WithClock overrides the clock used to stamp failure resources.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		slots: make(map[Slot]*slotState),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) state(slot Slot) *slotState {
	st, ok := c.slots[slot]
	if !ok {
		st = &slotState{}
		c.slots[slot] = st
	}
	return st
}

// GetOrFetch returns the slot's resource when key matches the stored key and
// otherwise calls fetch exactly once and stores its result under key.
//
// A failed fetch yields a resource whose content starts with
// model.FetchFailurePrefix; the key is still recorded so the same key is not
// refetched, while any other key fetches again.
//
// The store only happens if no newer GetOrFetch miss started on the slot and
// ctx is still live, so an abandoned turn cannot overwrite a newer topic.
func (c *Cache) GetOrFetch(ctx context.Context, slot Slot, key string, fetch FetchFunc) model.Resource {
	c.mu.Lock()
	st := c.state(slot)
	if st.entry != nil && st.entry.key == key {
		res := st.entry.resource
		c.mu.Unlock()
		logx.Debug().Str("slot", string(slot)).Str("key", key).Msg("Fetch cache hit")
		return res
	}
	st.latest++
	gen := st.latest
	c.fetches++
	fetches := c.fetches
	c.mu.Unlock()
	logx.Debug().Str("slot", string(slot)).Str("key", key).Int("fetches", fetches).Msg("Fetch cache miss")

	res, err := fetch(ctx, key)
	if err != nil {
		logx.Warn().Err(err).Str("slot", string(slot)).Str("key", key).Msg("Fetch failed")
		res = model.FailedResource(err.Error(), c.now())
	} else if res.FetchedAt.IsZero() {
		res.FetchedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		logx.Debug().Str("slot", string(slot)).Str("key", key).Msg("Fetch abandoned, cache left untouched")
		return res
	}
	st = c.state(slot)
	if gen != st.latest {
		logx.Debug().Str("slot", string(slot)).Str("key", key).Uint64("gen", gen).Uint64("latest", st.latest).
			Msg("Fetch superseded by a newer request, result not stored")
		return res
	}
	st.entry = &entry{key: key, resource: res, gen: gen}
	return res
}

// Key returns the key stored in slot, "" when empty.
func (c *Cache) Key(slot Slot) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.slots[slot]; ok && st.entry != nil {
		return st.entry.key
	}
	return ""
}

// Peek returns the stored resource and key without fetching.
func (c *Cache) Peek(slot Slot) (model.Resource, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.slots[slot]; ok && st.entry != nil {
		return st.entry.resource, st.entry.key, true
	}
	return model.Resource{}, "", false
}

// Clear empties one slot. Pending fetches for it will not be stored.
func (c *Cache) Clear(slot Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(slot)
	st.entry = nil
	st.latest++
}

// ClearAll empties every slot; called on new chat and session reload.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, st := range c.slots {
		st.entry = nil
		st.latest++
	}
}

// Fetches returns how many times a fetch function was invoked.
func (c *Cache) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}
