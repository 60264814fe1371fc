package model

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported response language, stored as its ISO 639-1 code.
type Language string

const (
	Korean  Language = "ko"
	English Language = "en"
	Spanish Language = "es"
)

// SupportedLanguages lists the response languages in tie-break order.
var SupportedLanguages = []Language{Korean, English, Spanish}

var languageMatcher = language.NewMatcher([]language.Tag{
	language.Korean,
	language.English,
	language.Spanish,
})

func (l Language) String() string {
	return string(l)
}

// IsSupported reports whether l is one of ko, en, es.
func (l Language) IsSupported() bool {
	switch l {
	case Korean, English, Spanish:
		return true
	}
	return false
}

// ParseLanguage normalises a BCP 47 tag ("en-US", "es_MX", "ko-KR") into a
// supported language. ok is false when the tag is unparsable or nothing
// matches with at least high confidence.
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return SupportedLanguages[idx], true
}

// SignalSource names the heuristic that produced a LanguageSignal.
type SignalSource string

const (
	SourceExplicitPhrase SignalSource = "explicit-phrase"
	SourceKeywordRatio   SignalSource = "keyword-ratio"
	SourceCharacterClass SignalSource = "character-class"
	SourceStatistical    SignalSource = "statistical"
)

// LanguageSignal is a transient detection result. Never persisted.
type LanguageSignal struct {
	Language   Language
	Source     SignalSource
	Confidence float64
}
