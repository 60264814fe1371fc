package usage

import (
	"context"
	"time"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/turnrouter/internal/core/error"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

const (
	// DailyLimit blocks generation once the day's count reaches it.
	DailyLimit = 100
	// WarnThreshold starts non-blocking warnings.
	WarnThreshold = 80

	dateLayout = "2006-01-02"
)

// Level is the gate decision for a count.
type Level int

const (
	LevelAllow Level = iota
	LevelWarn
	LevelBlock
)

func (l Level) String() string {
	switch l {
	case LevelAllow:
		return "allow"
	case LevelWarn:
		return "warn"
	case LevelBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Gate counts generative calls per UTC day.
type Gate struct {
	store  Store
	now    func() time.Time
	limit  int
	warnAt int
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock overrides time.Now; the gate converts to UTC itself.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(store Store, cfg model.UsageConfig, opts ...Option) *Gate {
	limit, warn := cfg.DailyLimit, cfg.WarnAt
	if limit <= 0 {
		limit = DailyLimit
	}
	if warn <= 0 || warn > limit {
		warn = WarnThreshold
		if warn > limit {
			warn = limit
		}
	}
	g := &Gate{store: store, now: time.Now, limit: limit, warnAt: warn}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) today() string {
	return g.now().UTC().Format(dateLayout)
}

// current loads the counter, resetting it to (today, 0) when the stored date
// is not today.
func (g *Gate) current(ctx context.Context) (Counter, error) {
	c, err := g.store.Load(ctx)
	if err != nil {
		return Counter{}, err
	}
	today := g.today()
	if c.Date != today {
		if c.Date != "" {
			logx.Debug().Str("stored_date", c.Date).Str("today", today).Int("count", c.Count).Msg("Usage counter reset for new day")
		}
		c = Counter{Date: today, Count: 0}
		if err := g.store.Save(ctx, c); err != nil {
			return Counter{}, err
		}
	}
	return c, nil
}

// Count returns today's count.
func (g *Gate) Count(ctx context.Context) (int, error) {
	c, err := g.current(ctx)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// Increment records one dispatched generative call.
func (g *Gate) Increment(ctx context.Context) error {
	c, err := g.current(ctx)
	if err != nil {
		return err
	}
	c.Count++
	return g.store.Save(ctx, c)
}

// Evaluate maps a count onto the gate level.
func (g *Gate) Evaluate(count int) Level {
	switch {
	case count >= g.limit:
		return LevelBlock
	case count >= g.warnAt:
		return LevelWarn
	default:
		return LevelAllow
	}
}

// Check loads today's count and returns its level, with errx.ErrQuotaExceeded
// when generation must be refused.
func (g *Gate) Check(ctx context.Context) (int, Level, error) {
	n, err := g.Count(ctx)
	if err != nil {
		return 0, LevelAllow, err
	}
	lvl := g.Evaluate(n)
	if lvl == LevelBlock {
		return n, lvl, errx.QuotaExceeded(n, g.limit)
	}
	return n, lvl, nil
}

// Limit returns the daily limit in effect.
func (g *Gate) Limit() int {
	return g.limit
}

// WarnAt returns the warning threshold in effect.
func (g *Gate) WarnAt() int {
	return g.warnAt
}
