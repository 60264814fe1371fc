package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Chative-core-poc-v1/turnrouter/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/turnrouter/pkg/logger"
)

const (
	// DefaultMinYear and DefaultMaxYear bound the year tokens that trigger a search.
	DefaultMinYear = 2020
	DefaultMaxYear = 2035

	ReasonQuestionRecency = "question+recency"
	ReasonNoMatch         = "no-match"

	keywordReasonFormat = "키워드 감지: %s"
)

// term is a keyword compiled for matching.
type term struct {
	text string
	re   *regexp.Regexp // nil means substring match
}

func compileTerms(words []string) []term {
	out := make([]term, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(norm.NFC.String(w))
		t := term{text: w}
		if isASCII(w) {
			t.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
		out = append(out, t)
	}
	return out
}

func (t term) matches(lower string) bool {
	if t.re != nil {
		return t.re.MatchString(lower)
	}
	return strings.Contains(lower, t.text)
}

// Scorer decides whether a plain chat answer should be augmented with a live
// web search. It never fails; "no match" is a final answer.
type Scorer struct {
	keywords []term
	patterns []*regexp.Regexp
	question []term
	recency  []term
	minYear  int
	maxYear  int
	// scored intents run last, after the keyword and question stages
	scored []*IntentScorer
}

// NewScorer builds the keyword scorer followed by the weighted intents.
// Without any intents the shipped sports-ranking intent is used.
func NewScorer(cfg model.SearchConfig, intents ...*IntentScorer) *Scorer {
	if len(intents) == 0 {
		intents = []*IntentScorer{NewIntentScorer(SportsRankingConfig())}
	}
	minY, maxY := cfg.MinYear, cfg.MaxYear
	if minY <= 0 || maxY <= 0 || minY > maxY {
		minY, maxY = DefaultMinYear, DefaultMaxYear
	}
	return &Scorer{
		keywords: compileTerms(Keywords),
		patterns: Patterns,
		question: compileTerms(QuestionWords),
		recency:  compileTerms(RecencyWords),
		minYear:  minY,
		maxYear:  maxY,
		scored:   intents,
	}
}

// ShouldSearch returns true with the matched token when the query needs live
// data, true with ReasonQuestionRecency when it asks a question about recent
// events, or true with the intent name when a weighted intent reaches its
// threshold.
func (s *Scorer) ShouldSearch(query string) (bool, string) {
	lower := strings.ToLower(norm.NFC.String(query))

	if hit, ok := s.firstMatch(lower); ok {
		logx.Debug().Str("match", hit).Msg("Search keyword detected")
		return true, fmt.Sprintf(keywordReasonFormat, hit)
	}

	if anyMatch(s.question, lower) && anyMatch(s.recency, lower) {
		return true, ReasonQuestionRecency
	}

	for _, in := range s.scored {
		if res := in.Score(query); res.Positive {
			logx.Debug().Str("intent", in.Name()).Float64("score", res.Score).Msg("Scored search intent detected")
			return true, in.Name()
		}
	}
	return false, ReasonNoMatch
}

func (s *Scorer) firstMatch(lower string) (string, bool) {
	for _, k := range s.keywords {
		if k.matches(lower) {
			return k.text, true
		}
	}
	for _, p := range s.patterns {
		if m := p.FindString(lower); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	if y, ok := s.year(lower); ok {
		return strconv.Itoa(y), true
	}
	return "", false
}

// year returns the first year token within [minYear, maxYear].
func (s *Scorer) year(lower string) (int, bool) {
	return findYear(lower, s.minYear, s.maxYear)
}

func findYear(lower string, minYear, maxYear int) (int, bool) {
	for _, m := range digitRun.FindAllString(lower, -1) {
		if len(m) != 4 {
			continue
		}
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y >= minYear && y <= maxYear {
			return y, true
		}
	}
	return 0, false
}

func anyMatch(terms []term, lower string) bool {
	for _, t := range terms {
		if t.matches(lower) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
