// Package fuzzy scores description similarity between unmatched records
// and promotes high-confidence pairs that the exact strategies missed.
//
// Confidence is a weighted blend of five string metrics on the normalized
// descriptions, boosted when amounts or dates also line up, capped at 100.
package fuzzy

import (
	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/xrash/smetrics"
)

// Weights controls how much each similarity metric contributes to the
// blended score. Weights should sum to 1.
type Weights struct {
	Ratio        float64 `yaml:"ratio"`
	PartialRatio float64 `yaml:"partial_ratio"`
	TokenSort    float64 `yaml:"token_sort"`
	TokenSet     float64 `yaml:"token_set"`
	JaroWinkler  float64 `yaml:"jaro_winkler"`
}

// DefaultWeights favors the plain ratio, with the token and character
// metrics filling in for reordered or truncated descriptions.
func DefaultWeights() Weights {
	return Weights{
		Ratio:        0.3,
		PartialRatio: 0.2,
		TokenSort:    0.2,
		TokenSet:     0.2,
		JaroWinkler:  0.1,
	}
}

// Scores holds the individual similarity metrics for one candidate pair,
// each on a 0 to 100 scale.
type Scores struct {
	Ratio        float64
	PartialRatio float64
	TokenSort    float64
	TokenSet     float64
	JaroWinkler  float64
}

// Score computes all five metrics for a pair of normalized descriptions.
func Score(a, b string) Scores {
	if a == "" || b == "" {
		return Scores{}
	}
	return Scores{
		Ratio:        float64(fuzzywuzzy.Ratio(a, b)),
		PartialRatio: float64(fuzzywuzzy.PartialRatio(a, b)),
		TokenSort:    float64(fuzzywuzzy.TokenSortRatio(a, b)),
		TokenSet:     float64(fuzzywuzzy.TokenSetRatio(a, b)),
		JaroWinkler:  smetrics.JaroWinkler(a, b, 0.7, 4) * 100,
	}
}

// Weighted blends the metrics into a single 0 to 100 score.
func (s Scores) Weighted(w Weights) float64 {
	return s.Ratio*w.Ratio +
		s.PartialRatio*w.PartialRatio +
		s.TokenSort*w.TokenSort +
		s.TokenSet*w.TokenSet +
		s.JaroWinkler*w.JaroWinkler
}

// Map exposes the metrics for match criteria reporting.
func (s Scores) Map() map[string]float64 {
	return map[string]float64{
		"ratio":         s.Ratio,
		"partial_ratio": s.PartialRatio,
		"token_sort":    s.TokenSort,
		"token_set":     s.TokenSet,
		"jaro_winkler":  s.JaroWinkler,
	}
}
