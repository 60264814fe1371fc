package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
)

const (
	// KeywordRatioThreshold is the minimum matched/total token ratio for keyword detection.
	KeywordRatioThreshold = 0.6
	// KeywordMinTokens is the minimum token count before keyword ratio is considered.
	KeywordMinTokens = 2
	// StatisticalMinConfidence is the lowest detector confidence accepted by the fallback.
	StatisticalMinConfidence = 0.4
	// EnglishMinRunes is the length a Latin-only text must exceed to be read as English.
	EnglishMinRunes = 5
)

// confidences reported per source
const (
	explicitConfidence = 1.0
	hangulConfidence   = 0.9
	spanishConfidence  = 0.8
	latinConfidence    = 0.7
)

// StatisticalDetector guesses the dominant language of a text. Implementations
// must be deterministic.
type StatisticalDetector interface {
	Detect(text string) (model.Language, float64)
}

// Extractor scores text against the phrase, keyword and character-class
// tables, falling back to a StatisticalDetector.
type Extractor struct {
	keywordRatio float64
	statMinConf  float64
	phrases      []Phrase
	keywords     map[model.Language]map[string]struct{}
	detector     StatisticalDetector
}

// NewExtractor builds an Extractor from config. A nil detector disables the
// statistical step.
func NewExtractor(cfg model.LanguageConfig, detector StatisticalDetector) *Extractor {
	kw := make(map[model.Language]map[string]struct{}, len(Keywords))
	for lang, words := range Keywords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[normalize(w)] = struct{}{}
		}
		kw[lang] = set
	}
	phrases := make([]Phrase, len(ExplicitPhrases))
	for i, p := range ExplicitPhrases {
		phrases[i] = Phrase{Text: normalize(p.Text), Language: p.Language}
	}
	return &Extractor{
		keywordRatio: normalizeRatio(cfg.KeywordRatio, KeywordRatioThreshold),
		statMinConf:  normalizeRatio(cfg.StatisticalMinConfidence, StatisticalMinConfidence),
		phrases:      phrases,
		keywords:     kw,
		detector:     detector,
	}
}

// Detect returns the first signal produced by the priority chain
// explicit phrase > keyword ratio > character class > statistical > current.
func (e *Extractor) Detect(text string, current model.Language) model.LanguageSignal {
	lower := normalize(text)

	if sig, ok := e.explicitPhrase(lower); ok {
		return sig
	}
	if sig, ok := e.matchKeywords(lower); ok {
		return sig
	}
	if sig, ok := characterClass(lower); ok {
		return sig
	}
	if sig, ok := e.statistical(text, current); ok {
		return sig
	}
	return model.LanguageSignal{Language: current, Source: model.SourceStatistical, Confidence: 0}
}

func (e *Extractor) explicitPhrase(text string) (model.LanguageSignal, bool) {
	best := -1
	var lang model.Language
	for _, p := range e.phrases {
		idx := strings.Index(text, p.Text)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			lang = p.Language
		}
	}
	if best < 0 {
		return model.LanguageSignal{}, false
	}
	return model.LanguageSignal{Language: lang, Source: model.SourceExplicitPhrase, Confidence: explicitConfidence}, true
}

func (e *Extractor) matchKeywords(text string) (model.LanguageSignal, bool) {
	tokens := Tokenize(text)
	if len(tokens) < KeywordMinTokens {
		return model.LanguageSignal{}, false
	}

	var (
		bestLang  model.Language
		bestRatio float64
	)
	for _, lang := range model.SupportedLanguages {
		set := e.keywords[lang]
		matched := 0
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(tokens))
		if ratio > bestRatio {
			bestRatio = ratio
			bestLang = lang
		}
	}
	if bestLang == "" || bestRatio < e.keywordRatio {
		return model.LanguageSignal{}, false
	}
	return model.LanguageSignal{Language: bestLang, Source: model.SourceKeywordRatio, Confidence: bestRatio}, true
}

func characterClass(text string) (model.LanguageSignal, bool) {
	var hangul, spanish, latin bool
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul = true
		case strings.ContainsRune(SpanishMarks, r):
			spanish = true
		case unicode.Is(unicode.Latin, r):
			latin = true
		}
	}
	switch {
	case hangul:
		return model.LanguageSignal{Language: model.Korean, Source: model.SourceCharacterClass, Confidence: hangulConfidence}, true
	case spanish:
		return model.LanguageSignal{Language: model.Spanish, Source: model.SourceCharacterClass, Confidence: spanishConfidence}, true
	case latin && utf8.RuneCountInString(strings.TrimSpace(text)) > EnglishMinRunes:
		return model.LanguageSignal{Language: model.English, Source: model.SourceCharacterClass, Confidence: latinConfidence}, true
	}
	return model.LanguageSignal{}, false
}

func (e *Extractor) statistical(text string, current model.Language) (model.LanguageSignal, bool) {
	if e.detector == nil || strings.TrimSpace(text) == "" {
		return model.LanguageSignal{}, false
	}
	lang, conf := e.detector.Detect(text)
	if !lang.IsSupported() || lang == current || conf < e.statMinConf {
		return model.LanguageSignal{}, false
	}
	return model.LanguageSignal{Language: lang, Source: model.SourceStatistical, Confidence: conf}, true
}

// Tokenize splits normalized text on whitespace and trims punctuation from
// each token. Empty tokens are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, trimCutset)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// normalize composes Hangul jamo and accents (NFC) and lowercases.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func normalizeRatio(v, fallback float64) float64 {
	if v <= 0 || v > 1 {
		return fallback
	}
	return v
}
