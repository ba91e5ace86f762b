// Package relevance maps a query and an item to a relevance score in [0,1],
// and a score to the radius an item should grow toward.
//
// The heuristic is pluggable through [Scorer]; [Substring] is the default.
package relevance

import (
	"strings"

	"github.com/matzehuels/mosaic/pkg/catalog"
)

// Score weights and limits used by [Substring].
const (
	// Baseline is the score every item receives for an empty query.
	Baseline = 0.1

	// Floor is the score of a non-matching item under a non-empty query.
	// Keeps unmatched items from vanishing entirely.
	Floor = 0.05

	WeightTitle      = 0.6
	WeightCategory   = 0.3
	WeightTag        = 0.2
	WeightExactTitle = 0.4
)

// Scorer computes the relevance of item for query. Implementations must be
// pure and return a value in [0,1].
type Scorer interface {
	Score(query string, item catalog.Item) float64
}

// ScorerFunc adapts a plain function to [Scorer].
type ScorerFunc func(query string, item catalog.Item) float64

// Score calls f(query, item).
func (f ScorerFunc) Score(query string, item catalog.Item) float64 { return f(query, item) }

// Substring is the default case-insensitive substring scorer.
//
//	empty query              -> 0.1
//	title contains query     -> +0.6
//	category contains query  -> +0.3
//	any tag contains query   -> +0.2
//	title equals query       -> +0.4
//
// The sum is clamped to 1; a clamped sum of 0 becomes 0.05. Whitespace is
// part of the query and is matched literally.
type Substring struct{}

// Score implements [Scorer].
func (Substring) Score(query string, item catalog.Item) float64 {
	if query == "" {
		return Baseline
	}
	q := strings.ToLower(query)

	title := strings.ToLower(item.Title)
	var s float64
	if strings.Contains(title, q) {
		s += WeightTitle
	}
	if strings.Contains(strings.ToLower(item.Category), q) {
		s += WeightCategory
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			s += WeightTag
			break
		}
	}
	if title == q {
		s += WeightExactTitle
	}

	s = min(s, 1)
	if s == 0 {
		return Floor
	}
	return s
}

// TargetRadius converts a score to a radius. Scores at or below [Baseline]
// collapse to base; above it the radius grows linearly to max at score 1.
func TargetRadius(score, base, max float64) float64 {
	if score <= Baseline {
		return base
	}
	return base + (max-base)*score
}

// Normalize maps a radius back to [0,1] relative to [base, max]. A zero-width
// range yields 0.
func Normalize(r, base, max float64) float64 {
	if max <= base {
		return 0
	}
	v := (r - base) / (max - base)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
