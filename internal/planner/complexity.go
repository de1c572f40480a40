package planner

import (
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
)

// AnalyzeComplexity scores goal text in [0,1] as the mean of three capped
// ratios: word count, complexity keyword hits, and specificity marker hits.
// Keywords and markers both match as substrings of the lower-cased text, so
// "developing" counts for "develop" and "platform" for "for".
func AnalyzeComplexity(goal string, a catalog.Analysis) float64 {
	text := strings.ToLower(strings.TrimSpace(goal))
	if text == "" {
		return 0
	}

	length := capRatio(float64(len(strings.Fields(text))), a.WordCountCap)
	keywords := capRatio(float64(countContained(text, a.ComplexityKeywords)), a.KeywordCap)
	specificity := capRatio(float64(countContained(text, a.SpecificityMarkers)), a.MarkerCap)

	return (length + keywords + specificity) / 3
}

// countContained counts the terms found in text; each term counts once.
func countContained(text string, terms []string) int {
	var hits int
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			hits++
		}
	}
	return hits
}

func capRatio(n, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return min(n/limit, 1)
}
