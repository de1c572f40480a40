package catalog

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// BuiltinSource names the embedded catalog.
const BuiltinSource = "builtin"

//go:embed default.yaml
var defaultYAML []byte

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

var builtin = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultYAML, BuiltinSource)
})

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return builtin()
}

// MustBuiltin is Builtin for callers that cannot recover from a broken build.
func MustBuiltin() *Catalog {
	c, err := Builtin()
	if err != nil {
		panic(err)
	}
	return c
}

// BuiltinYAML returns a copy of the embedded catalog document.
func BuiltinYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Load reads and validates a catalog file. An empty path loads the builtin catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogUnreadableError(path, err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML catalog, checks it against the JSON schema, and
// verifies cross references between steps.
func Parse(data []byte, source string) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewCatalogUnreadableError(source, err)
	}
	if raw == nil {
		return nil, errors.NewCatalogSchemaError([]string{"document is empty"})
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, errors.NewCatalogUnreadableError(source, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, errors.NewCatalogSchemaError(issues)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.NewCatalogUnreadableError(source, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	c.Digest = hex.EncodeToString(sum[:])
	c.Source = source
	return &c, nil
}

// Validate checks the invariants the schema cannot express: unique
// categories and step keys, known dependency keys, acyclic steps, and
// exactly one trailing fallback template.
func (c *Catalog) Validate() error {
	if len(c.Templates) == 0 {
		return errors.NewCatalogInconsistentError("no categories defined")
	}

	seen := make(map[domain.Category]bool, len(c.Templates))
	for i := range c.Templates {
		t := &c.Templates[i]
		if seen[t.Category] {
			return errors.NewCatalogInconsistentError(fmt.Sprintf("duplicate category %q", t.Category))
		}
		seen[t.Category] = true

		if t.IsFallback() && i != len(c.Templates)-1 {
			return errors.NewCatalogInconsistentError(
				fmt.Sprintf("category %q has no keywords but is not last", t.Category))
		}
		if err := t.validate(); err != nil {
			return err
		}
	}

	if !c.Templates[len(c.Templates)-1].IsFallback() {
		return errors.NewCatalogInconsistentError("last category must have no keywords")
	}
	return nil
}

func (t *Template) validate() error {
	if len(t.Steps) == 0 {
		return errors.NewEmptyTemplateError(string(t.Category))
	}

	keys := make(map[string]bool, len(t.Steps))
	for i := range t.Steps {
		s := &t.Steps[i]
		if keys[s.Key] {
			return errors.NewCatalogInconsistentError(
				fmt.Sprintf("category %q: duplicate step key %q", t.Category, s.Key))
		}
		keys[s.Key] = true

		p, err := domain.NewPriority(string(s.Priority))
		if err != nil {
			return errors.NewCatalogInconsistentError(fmt.Sprintf("category %q step %q: %v", t.Category, s.Key, err))
		}
		s.Priority = p
	}

	for _, s := range t.Steps {
		for _, dep := range s.DependsOn {
			if !keys[dep] {
				return errors.NewCatalogInconsistentError(
					fmt.Sprintf("category %q step %q depends on unknown step %q", t.Category, s.Key, dep))
			}
		}
	}

	if cycle := t.findCycle(); cycle != nil {
		return errors.NewCyclicDependencyError(cycle)
	}
	return nil
}

// findCycle returns the first dependency cycle found, as a key path whose
// first and last entries are equal, or nil.
func (t *Template) findCycle() []string {
	deps := make(map[string][]string, len(t.Steps))
	for _, s := range t.Steps {
		deps[s.Key] = s.DependsOn
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(key string) []string
	visit = func(key string) []string {
		visited[key] = true
		onStack[key] = true
		stack = append(stack, key)

		for _, dep := range deps[key] {
			if onStack[dep] {
				for i, k := range stack {
					if k == dep {
						return append(append([]string{}, stack[i:]...), dep)
					}
				}
			}
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[key] = false
		return nil
	}

	for _, s := range t.Steps {
		if !visited[s.Key] {
			if cycle := visit(s.Key); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ShareTotal sums the hour shares of a template's steps.
func (t *Template) ShareTotal() float64 {
	var total float64
	for _, s := range t.Steps {
		total += s.HourShare
	}
	return total
}

// Describe summarizes the catalog for logs and health details.
func (c *Catalog) Describe() string {
	cats := make([]string, 0, len(c.Templates))
	for _, t := range c.Templates {
		cats = append(cats, string(t.Category))
	}
	domains := c.DomainNames()
	return fmt.Sprintf("catalog %s (%s): categories=[%s] domains=[%s]",
		c.Version, c.Source, strings.Join(cats, ","), strings.Join(domains, ","))
}
