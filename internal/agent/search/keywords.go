package search

import "regexp"

// Keywords whose presence means the answer depends on live data. ASCII
// entries match on word boundaries; Korean and Spanish entries with
// non-ASCII letters match as substrings.
var Keywords = []string{
	// temporal
	"오늘", "내일", "어제", "이번주", "이번 주", "이번달", "올해", "현재",
	"today", "tomorrow", "yesterday", "tonight", "this week", "this month",
	"hoy", "mañana", "ayer", "esta semana", "este mes",
	// market / crypto
	"주가", "주식", "환율", "시세", "비트코인", "이더리움", "코인", "가격",
	"stock price", "share price", "exchange rate", "bitcoin", "ethereum", "crypto", "nasdaq", "price of",
	"precio", "bolsa", "acciones", "tipo de cambio", "criptomoneda",
	// sports results
	"경기 결과", "스코어", "승부", "몇 대 몇",
	"match result", "final score", "who won",
	"resultado del partido", "marcador", "quién ganó",
	// medicine / dosage
	"복용량", "용량", "부작용", "처방",
	"dosage", "dose", "side effects", "overdose",
	"dosis", "efectos secundarios",
	// news
	"뉴스", "속보", "news", "breaking", "noticias", "última hora",
}

// Patterns catch combinations a flat keyword list cannot.
var Patterns = []*regexp.Regexp{
	// location + weather/time
	regexp.MustCompile(`(?i)(서울|부산|인천|대구|제주|도쿄|뉴욕|seoul|busan|tokyo|new york|london|paris|madrid|barcelona|méxico|mexico city)\s*(의\s*)?(날씨|기온|시간|weather|time|temperature|clima|hora)`),
	regexp.MustCompile(`(?i)\b(weather|clima)\s+(in|en|at)\s+\p{L}+`),
	regexp.MustCompile(`(?i)qué\s+tiempo\s+hace`),
	// relative dates
	regexp.MustCompile(`(지난|다음)\s?(주|달|해)`),
	regexp.MustCompile(`최근\s?\d+\s?(일|주|개월|년)`),
	regexp.MustCompile(`(?i)\b(last|next|past)\s+(week|month|year|\d+\s+days)\b`),
	regexp.MustCompile(`(?i)\b(la\s+)?(semana|mes|año)\s+(pasad[oa]|próxim[oa])\b`),
}

// digitRun finds maximal digit runs; four digit runs are year candidates.
var digitRun = regexp.MustCompile(`[0-9]+`)

// QuestionWords and RecencyWords drive the secondary heuristic.
var (
	QuestionWords = []string{
		"how", "when", "how much", "how many", "what", "where", "which", "who",
		"어떻게", "언제", "얼마", "몇", "뭐", "무엇", "어디", "누가",
		"cómo", "cuándo", "cuánto", "qué", "dónde", "quién",
	}
	RecencyWords = []string{
		"now", "recently", "latest", "current", "currently", "newest",
		"지금", "요즘", "최근", "최신", "방금",
		"ahora", "recientemente", "último", "última", "actual",
	}
)
