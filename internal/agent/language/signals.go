package language

import "github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"

// Phrase is an explicit request to answer in a language, matched as a
// case-insensitive substring of the normalized text.
type Phrase struct {
	Text     string
	Language model.Language
}

// ExplicitPhrases are checked before any other signal. Order breaks ties
// between phrases that start at the same position.
var ExplicitPhrases = []Phrase{
	// English
	{"in english", model.English},
	{"answer in english", model.English},
	{"speak english", model.English},
	{"영어로", model.English},
	{"en inglés", model.English},
	{"en ingles", model.English},
	// Korean
	{"in korean", model.Korean},
	{"speak korean", model.Korean},
	{"한국어로", model.Korean},
	{"한글로", model.Korean},
	{"en coreano", model.Korean},
	// Spanish
	{"in spanish", model.Spanish},
	{"speak spanish", model.Spanish},
	{"스페인어로", model.Spanish},
	{"en español", model.Spanish},
	{"en espanol", model.Spanish},
}

// Keywords are per-language token sets for keyword-ratio scoring. The sets
// are disjoint so a token never counts for two languages.
var Keywords = map[model.Language][]string{
	model.Korean: {
		"안녕", "안녕하세요", "감사합니다", "고마워", "네", "아니요", "뭐야", "뭐예요",
		"이거", "그거", "요약", "요약해줘", "알려줘", "해줘", "주세요", "어떻게",
		"왜", "언제", "어디", "누구", "좋아", "싫어", "오늘", "내일", "정말",
	},
	model.English: {
		"the", "is", "are", "what", "how", "why", "when", "where", "who", "please",
		"summarize", "summary", "hello", "hi", "thanks", "thank", "you", "can",
		"this", "that", "and", "of", "to", "it", "me", "tell", "about", "do", "does",
	},
	model.Spanish: {
		"hola", "gracias", "por", "favor", "qué", "que", "cómo", "como", "cuándo",
		"dónde", "quién", "el", "la", "los", "las", "es", "de", "un", "una", "resumen",
		"resume", "está", "y", "pero", "muy", "bien", "dime", "sobre",
	},
}

// SpanishMarks are characters that only Spanish uses among the supported languages.
const SpanishMarks = "ñáéíóúü¿¡"

// trimCutset is stripped from both ends of each token before keyword lookup.
const trimCutset = ".,;:!?¿¡\"'()[]{}…~"
