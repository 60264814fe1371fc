package intent

import (
	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

// Input is everything the cascade needs about one turn.
type Input struct {
	Utterance         model.Utterance
	HasUploadedPDF    bool
	HasUploadedImages bool
	// CachedPDFKey is the key currently held by the session's pdf slot, "" when empty.
	CachedPDFKey string
}

// InputFor derives the attachment flags from the utterance itself.
func InputFor(u model.Utterance, cachedPDFKey string) Input {
	return Input{
		Utterance:         u,
		HasUploadedPDF:    u.HasPDF(),
		HasUploadedImages: u.HasImages(),
		CachedPDFKey:      cachedPDFKey,
	}
}

// Classifier applies an ordered rule list; the first matching rule wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier uses DefaultRules(cfg).
func NewClassifier(cfg model.IntentConfig) *Classifier {
	return NewClassifierWithRules(DefaultRules(cfg))
}

// NewClassifierWithRules builds a classifier over a custom cascade. A plain
// chat fallback is appended when the list does not end in one.
func NewClassifierWithRules(rules []Rule) *Classifier {
	rules = append([]Rule(nil), rules...)
	if len(rules) == 0 || rules[len(rules)-1].Name != RulePlainChat {
		rules = append(rules, Rule{Name: RulePlainChat, Apply: func(*Turn) (model.IntentDecision, bool, error) {
			return model.PlainChat(), true, nil
		}})
	}
	return &Classifier{rules: rules}
}

// Classify returns the decision of the first matching rule. A non-nil error
// means the rule matched but could not complete, e.g. a YouTube link without a
// video id; the returned decision still names the matched pipeline.
func (c *Classifier) Classify(in Input) (model.IntentDecision, error) {
	t := NewTurn(in)
	for _, r := range c.rules {
		d, ok, err := r.Apply(t)
		if !ok {
			continue
		}
		d.Rule = r.Name
		ev := logx.Debug()
		if err != nil {
			ev = logx.Warn().Err(err)
		}
		ev.Str("rule", r.Name).
			Str("intent", d.Kind.String()).
			Int("url_count", len(t.URLs)).
			Bool("has_pdf", in.HasUploadedPDF).
			Bool("has_images", in.HasUploadedImages).
			Msg("Intent classified")
		return d, err
	}
	return model.PlainChat(), nil
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}
