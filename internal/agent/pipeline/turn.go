package pipeline

import (
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/router"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/usage"
)

// Turn carries one user turn through the graph and holds its outcome.
type Turn struct {
	Session   *session.Context
	Utterance model.Utterance

	Route    router.Route
	Resource *model.Resource
	// Search holds search results for plain chat turns, "" when not searched.
	Search       string
	SearchReason string

	// Notices are user-facing messages shown next to the reply.
	Notices []string
	// Blocked is set when the turn ends without a generative call. Err then
	// names the reason when it is an error, e.g. errx.ErrQuotaExceeded.
	Blocked bool
	Err     error

	Reply string
	// Generated is set when the model produced Reply and the call was counted.
	Generated bool
	Usage     usage.StatusView
}

func (t *Turn) notify(msg string) {
	if msg != "" {
		t.Notices = append(t.Notices, msg)
	}
}

func (t *Turn) block(err error, msg string) {
	t.Blocked = true
	t.Err = err
	t.notify(msg)
}

// Language is the response language chosen for the turn.
func (t *Turn) Language() model.Language {
	if t.Route.ResponseLanguage.IsSupported() {
		return t.Route.ResponseLanguage
	}
	return t.Session.SystemLanguage
}

// turnState is the graph-local state; it gives the chat model post handler
// access to the turn.
type turnState struct {
	turn *Turn
}
