package planner

import (
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
)

// SelectTemplate returns the first template, in catalog order, with a keyword
// contained in the lower-cased goal. The fallback template matches anything.
func SelectTemplate(goal string, c *catalog.Catalog) *catalog.Template {
	text := strings.ToLower(goal)
	for i := range c.Templates {
		t := &c.Templates[i]
		if t.IsFallback() || containsAny(text, t.Keywords) {
			return t
		}
	}
	return c.Fallback()
}

// containsAny reports whether lower-cased text contains any of keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// StepHours scales a template's base hours by complexity and a step's share.
func StepHours(baseHours, complexity, share float64) float64 {
	return baseHours * (1 + complexity) * share
}
