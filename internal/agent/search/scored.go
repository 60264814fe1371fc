package search

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// SportsRankingThreshold is the minimum score for a positive sports-ranking intent.
	SportsRankingThreshold = 1.8
	// SportsCoreWeight is the base score of a league/competition acronym.
	SportsCoreWeight = 1.2
	// SportsSupportWeight is added per distinct supporting ranking term.
	SportsSupportWeight = 0.6
	// SportsYearBonus is added once when a year token is present.
	SportsYearBonus = 0.5

	// absorbs float error so 1.2+0.6 reaches a 1.8 threshold
	scoreEpsilon = 1e-9
)

// WeightedTerm is a keyword with its contribution to an intent score.
type WeightedTerm struct {
	Text   string
	Weight float64
}

// ScoredIntentConfig describes one weighted intent. Core terms contribute the
// highest matched weight once; support terms add their weight per distinct
// match; a year token adds YearBonus once.
type ScoredIntentConfig struct {
	Name      string
	Core      []WeightedTerm
	Support   []WeightedTerm
	YearBonus float64
	Threshold float64
	MinYear   int
	MaxYear   int
}

// IntentScorer is the weighted variant of the keyword scorer. Exact phrase
// lists miss short colloquial queries like "kbo 순위"; summing weights
// catches them while a lone acronym stays below the threshold.
type IntentScorer struct {
	cfg     ScoredIntentConfig
	core    []weighted
	support []weighted
}

type weighted struct {
	term
	weight float64
}

// ScoreResult explains a score.
type ScoreResult struct {
	Score    float64
	Positive bool
	Matches  []string
}

func NewIntentScorer(cfg ScoredIntentConfig) *IntentScorer {
	if cfg.MinYear <= 0 || cfg.MaxYear <= 0 || cfg.MinYear > cfg.MaxYear {
		cfg.MinYear, cfg.MaxYear = DefaultMinYear, DefaultMaxYear
	}
	return &IntentScorer{
		cfg:     cfg,
		core:    compileWeighted(cfg.Core),
		support: compileWeighted(cfg.Support),
	}
}

func compileWeighted(in []WeightedTerm) []weighted {
	words := make([]string, len(in))
	for i, w := range in {
		words[i] = w.Text
	}
	terms := compileTerms(words)
	out := make([]weighted, len(in))
	for i := range in {
		out[i] = weighted{term: terms[i], weight: in[i].Weight}
	}
	return out
}

// Name returns the intent name, e.g. "sports_ranking".
func (s *IntentScorer) Name() string {
	return s.cfg.Name
}

// Threshold returns the configured positive threshold.
func (s *IntentScorer) Threshold() float64 {
	return s.cfg.Threshold
}

// Score sums the weights matched in query.
func (s *IntentScorer) Score(query string) ScoreResult {
	lower := strings.ToLower(norm.NFC.String(query))
	var res ScoreResult

	var base float64
	var baseTerm string
	for _, c := range s.core {
		if c.weight > base && c.matches(lower) {
			base = c.weight
			baseTerm = c.text
		}
	}
	if baseTerm != "" {
		res.Score += base
		res.Matches = append(res.Matches, baseTerm)
	}

	for _, sp := range s.support {
		if sp.matches(lower) {
			res.Score += sp.weight
			res.Matches = append(res.Matches, sp.text)
		}
	}

	if y, ok := findYear(lower, s.cfg.MinYear, s.cfg.MaxYear); ok && s.cfg.YearBonus > 0 {
		res.Score += s.cfg.YearBonus
		res.Matches = append(res.Matches, strconv.Itoa(y))
	}

	res.Positive = res.Score+scoreEpsilon >= s.cfg.Threshold
	return res
}

// Detect reports whether query carries the intent.
func (s *IntentScorer) Detect(query string) bool {
	return s.Score(query).Positive
}

// SportsRankingConfig is the shipped sports-ranking intent.
func SportsRankingConfig() ScoredIntentConfig {
	core := []string{
		"kbo", "k리그", "k league", "epl", "premier league", "프리미어리그",
		"nba", "mlb", "la liga", "laliga", "챔피언스리그", "champions league", "fifa",
	}
	support := []string{
		"순위", "순위표", "랭킹", "몇 위", "몇위", "1위",
		"standings", "ranking", "rankings", "table", "top",
		"clasificación", "tabla", "posiciones",
	}
	cfg := ScoredIntentConfig{
		Name:      "sports_ranking",
		YearBonus: SportsYearBonus,
		Threshold: SportsRankingThreshold,
		MinYear:   DefaultMinYear,
		MaxYear:   DefaultMaxYear,
	}
	for _, c := range core {
		cfg.Core = append(cfg.Core, WeightedTerm{Text: c, Weight: SportsCoreWeight})
	}
	for _, s := range support {
		cfg.Support = append(cfg.Support, WeightedTerm{Text: s, Weight: SportsSupportWeight})
	}
	return cfg
}
