package language

import (
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Router turns a LanguageSignal into the per-turn response language and the
// decision to switch the session's sticky system language.
type Router struct {
	extractor *Extractor
}

func NewRouter(extractor *Extractor) *Router {
	return &Router{extractor: extractor}
}

// Route returns the response language for text and whether the system
// language should switch. Only explicit phrases switch it; keyword,
// character and statistical detections affect this turn only.
func (r *Router) Route(text string, sessionLanguage model.Language) (model.Language, bool) {
	return Decide(r.RouteSignal(text, sessionLanguage), sessionLanguage)
}

// Decide maps a signal to the response language and whether it came from an
// explicit phrase. A signal without confidence or outside the supported
// languages keeps the session language.
func Decide(sig model.LanguageSignal, sessionLanguage model.Language) (model.Language, bool) {
	resp := sig.Language
	if sig.Confidence == 0 || !resp.IsSupported() {
		resp = sessionLanguage
	}
	return resp, sig.Source == model.SourceExplicitPhrase
}

// RouteSignal exposes the underlying signal for callers that log or display it.
func (r *Router) RouteSignal(text string, sessionLanguage model.Language) model.LanguageSignal {
	sig := r.extractor.Detect(text, sessionLanguage)
	logx.Debug().
		Str("language", sig.Language.String()).
		Str("source", string(sig.Source)).
		Float64("confidence", sig.Confidence).
		Str("session_language", sessionLanguage.String()).
		Msg("Language signal detected")
	return sig
}
