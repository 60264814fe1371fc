package session

import (
	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/fetchcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/usage"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// DefaultLanguage is the system language of a session created without one.
const DefaultLanguage = model.Korean

// Context is the state of one user session. It is created at login with New,
// cleared with Reset when the user starts a new chat or reloads one, and
// released with Close at logout. A Context belongs to exactly one session and
// is not shared between goroutines.
type Context struct {
	ID string
	// SystemLanguage is the sticky language of the session.
	SystemLanguage model.Language
	// ResponseLanguage is the language chosen for the latest turn.
	ResponseLanguage model.Language

	Fetch *fetchcache.Cache
	Usage *usage.Gate

	closed bool
}

// New creates a session. An empty id is replaced by a random UUID and an
// unsupported language by DefaultLanguage.
func New(id string, lang model.Language, gate *usage.Gate, opts ...fetchcache.Option) *Context {
	if id == "" {
		id = uuid.NewString()
	}
	if !lang.IsSupported() {
		lang = DefaultLanguage
	}
	if gate == nil {
		gate = usage.NewGate(usage.NewMemoryStore(usage.Counter{}), model.UsageConfig{})
	}
	c := &Context{
		ID:               id,
		SystemLanguage:   lang,
		ResponseLanguage: lang,
		Fetch:            fetchcache.New(opts...),
		Usage:            gate,
	}
	logx.Debug().Str("session_id", id).Str("language", lang.String()).Msg("Session created")
	return c
}

// Reset forgets the cached content of the current topic. The usage counter and
// the system language survive.
func (c *Context) Reset() {
	c.Fetch.ClearAll()
	c.ResponseLanguage = c.SystemLanguage
	logx.Debug().Str("session_id", c.ID).Msg("Session reset")
}

// Close releases the session's cached content. A closed session must not be
// routed again.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.Fetch.ClearAll()
	c.closed = true
	logx.Debug().Str("session_id", c.ID).Msg("Session closed")
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	return c.closed
}

// SwitchSystemLanguage makes lang the sticky language and returns the notice
// to show the user, written in the new language. It returns "" when nothing
// changed.
func (c *Context) SwitchSystemLanguage(lang model.Language) string {
	if !lang.IsSupported() || lang == c.SystemLanguage {
		return ""
	}
	logx.Info().Str("session_id", c.ID).Str("from", c.SystemLanguage.String()).Str("to", lang.String()).Msg("System language switched")
	c.SystemLanguage = lang
	c.ResponseLanguage = lang
	return Notice(lang, NoticeLanguageSwitched)
}
