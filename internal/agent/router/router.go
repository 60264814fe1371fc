package router

import (
	"errors"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/fetchcache"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/intent"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/language"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/session"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// ErrSessionClosed is returned when routing a turn for a closed session.
var ErrSessionClosed = errors.New("session closed")

// Route is the routing outcome of one turn.
type Route struct {
	Intent           model.IntentDecision
	ResponseLanguage model.Language
	// ShouldSwitch asks the caller to make ResponseLanguage the session's
	// system language. Unlike language.Router.Route it is false when the
	// explicit phrase names the current system language.
	ShouldSwitch bool
	Signal       model.LanguageSignal
}

// Router is the single per-turn entry point: it picks the response language
// and the content pipeline.
type Router struct {
	language   *language.Router
	classifier *intent.Classifier
}

func New(lang *language.Router, classifier *intent.Classifier) *Router {
	return &Router{language: lang, classifier: classifier}
}

// NewDefault wires the default language cascade and intent rules.
func NewDefault(langCfg model.LanguageConfig, intentCfg model.IntentConfig, detector language.StatisticalDetector) *Router {
	return New(
		language.NewRouter(language.NewExtractor(langCfg, detector)),
		intent.NewClassifier(intentCfg),
	)
}

// RouteTurn classifies u against the state of s. It reads s but does not
// modify it; applying the switch and fetching content are up to the caller.
// A non-nil error other than ErrSessionClosed comes with a usable Route, e.g.
// a YouTube link without a video id.
func (r *Router) RouteTurn(u model.Utterance, s *session.Context) (Route, error) {
	if s == nil || s.Closed() {
		return Route{}, ErrSessionClosed
	}

	sig := r.language.RouteSignal(u.Text, s.SystemLanguage)
	resp, explicit := language.Decide(sig, s.SystemLanguage)
	route := Route{
		ResponseLanguage: resp,
		// an explicit request for the language already in use is not a switch
		ShouldSwitch: explicit && resp != s.SystemLanguage,
		Signal:       sig,
	}

	decision, err := r.classifier.Classify(intent.InputFor(u, s.Fetch.Key(fetchcache.SlotPDF)))
	route.Intent = decision

	logx.Debug().
		Str("session_id", s.ID).
		Str("intent", decision.Kind.String()).
		Str("language", resp.String()).
		Bool("should_switch", route.ShouldSwitch).
		Msg("Turn routed")
	return route, err
}
