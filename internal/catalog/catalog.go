// Package catalog holds the template catalog that drives plan generation:
// category templates, keyword sets, hourly rates, and the static domain tables
// served by the API. A Catalog is immutable once loaded.
package catalog

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

// Step is one task definition inside a category template.
type Step struct {
	Key             string          `yaml:"key" json:"key"`
	Title           string          `yaml:"title" json:"title"`
	Description     string          `yaml:"description" json:"description"`
	Priority        domain.Priority `yaml:"priority" json:"priority"`
	HourShare       float64         `yaml:"hour_share" json:"hour_share"`
	DependsOn       []string        `yaml:"depends_on,omitempty" json:"depends_on"`
	RiskFactors     []string        `yaml:"risk_factors" json:"risk_factors"`
	SuccessCriteria []string        `yaml:"success_criteria" json:"success_criteria"`
	ResourcesNeeded []string        `yaml:"resources_needed" json:"resources_needed"`
}

// Template is the fixed list of steps for a goal category.
type Template struct {
	Category  domain.Category `yaml:"category" json:"category"`
	Name      string          `yaml:"name" json:"name"`
	Keywords  []string        `yaml:"keywords,omitempty" json:"keywords"`
	BaseHours float64         `yaml:"base_hours" json:"base_hours"`
	Steps     []Step          `yaml:"steps" json:"steps"`
}

// IsFallback reports whether the template matches any goal.
func (t *Template) IsFallback() bool {
	return len(t.Keywords) == 0
}

// Step returns the step with the given key.
func (t *Template) Step(key string) (Step, bool) {
	for _, s := range t.Steps {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}

// Analysis configures the complexity analyzer.
type Analysis struct {
	ComplexityKeywords []string `yaml:"complexity_keywords" json:"complexity_keywords"`
	SpecificityMarkers []string `yaml:"specificity_markers" json:"specificity_markers"`
	WordCountCap       float64  `yaml:"word_count_cap" json:"word_count_cap"`
	KeywordCap         float64  `yaml:"keyword_cap" json:"keyword_cap"`
	MarkerCap          float64  `yaml:"marker_cap" json:"marker_cap"`
}

// DomainInfo describes a planning domain for /api/domains.
type DomainInfo struct {
	Name            string `yaml:"name" json:"name"`
	Description     string `yaml:"description" json:"description"`
	TypicalDuration string `yaml:"typical_duration" json:"typical_duration"`
	Complexity      string `yaml:"complexity" json:"complexity"`
}

// DomainTemplate lists the phases and typical tasks of a domain.
type DomainTemplate struct {
	Phases       []string            `yaml:"phases" json:"phases"`
	TypicalTasks map[string][]string `yaml:"typical_tasks" json:"typical_tasks"`
}

// Catalog is the complete configuration value consumed by the planner.
type Catalog struct {
	Version           string                    `yaml:"version" json:"version"`
	Analysis          Analysis                  `yaml:"analysis" json:"analysis"`
	HourlyRates       map[string]float64        `yaml:"hourly_rates" json:"hourly_rates"`
	DefaultHourlyRate float64                   `yaml:"default_hourly_rate" json:"default_hourly_rate"`
	Templates         []Template                `yaml:"categories" json:"categories"`
	Domains           map[string]DomainInfo     `yaml:"domains" json:"domains"`
	DomainTemplates   map[string]DomainTemplate `yaml:"domain_templates" json:"domain_templates"`

	// Digest is the blake3 hash of the source document, set by Parse.
	Digest string `yaml:"-" json:"digest"`
	// Source is the file the catalog was read from, or "builtin".
	Source string `yaml:"-" json:"source"`
}

// Template returns the template for a category.
func (c *Catalog) Template(category domain.Category) (*Template, bool) {
	for i := range c.Templates {
		if c.Templates[i].Category == category {
			return &c.Templates[i], true
		}
	}
	return nil, false
}

// Fallback returns the keyword-less template used when nothing else matches.
func (c *Catalog) Fallback() *Template {
	for i := range c.Templates {
		if c.Templates[i].IsFallback() {
			return &c.Templates[i]
		}
	}
	return nil
}

// HourlyRate returns the rate for a domain, falling back to the default rate.
func (c *Catalog) HourlyRate(domainName string) float64 {
	if rate, ok := c.HourlyRates[strings.ToLower(domainName)]; ok {
		return rate
	}
	return c.DefaultHourlyRate
}

// Categories lists the template categories in match order.
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(c.Templates))
	for _, t := range c.Templates {
		out = append(out, t.Category)
	}
	return out
}

// DomainNames lists the domain keys in sorted order.
func (c *Catalog) DomainNames() []string {
	names := make([]string, 0, len(c.Domains))
	for name := range c.Domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
