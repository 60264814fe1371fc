package model

// ================ Config ================
// Every threshold below also exists as a named constant in the package that
// uses it; zero or out-of-range values fall back to those constants.

type SessionConfig struct {
	TTL             string `envconfig:"SESSION_TTL" default:"24h"`
	DefaultLanguage string `envconfig:"LANGUAGE_DEFAULT" default:"ko"`
	HistoryMaxTurns int    `envconfig:"SESSION_HISTORY_MAX_TURNS" default:"10"`
}

type LanguageConfig struct {
	KeywordRatio             float64 `envconfig:"LANGUAGE_KEYWORD_RATIO" default:"0.6"`
	StatisticalMinConfidence float64 `envconfig:"LANGUAGE_STATISTICAL_MIN_CONFIDENCE" default:"0.4"`
}

type IntentConfig struct {
	// ImagesRequireKeyword sends image turns without an "analyze" keyword to
	// plain chat. Off by default: any image turn without a URL is analysed.
	ImagesRequireKeyword bool `envconfig:"INTENT_IMAGES_REQUIRE_KEYWORD" default:"false"`
}

type SearchConfig struct {
	MinYear int `envconfig:"SEARCH_MIN_YEAR" default:"2020"`
	MaxYear int `envconfig:"SEARCH_MAX_YEAR" default:"2035"`
}

type UsageConfig struct {
	DailyLimit int `envconfig:"USAGE_DAILY_LIMIT" default:"100"`
	WarnAt     int `envconfig:"USAGE_WARN_AT" default:"80"`
}

type CacheConfig struct {
	// Backend selects the shared response cache: "memory" or "redis".
	Backend string `envconfig:"RESPONSE_CACHE_BACKEND" default:"memory"`
	TTL     string `envconfig:"RESPONSE_CACHE_TTL" default:"30m"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}
