// Package catalog holds the static description of the three prakriti types and
// resolves the labels returned by the classifier against it.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"
	"gopkg.in/yaml.v3"

	"go-prakriti-web/pkg/models"
)

//go:embed prakriti.yaml
var defaultDocument []byte

// maxLabelDistance is the largest edit distance at which an unknown label is
// still matched to a known type.
const maxLabelDistance = 2

// Theme is the visual identity of a type
type Theme struct {
	Color  string `yaml:"color"`
	Icon   string `yaml:"icon"`
	Symbol string `yaml:"symbol"`
}

// NeutralTheme is used for labels that match no known type
var NeutralTheme = Theme{Color: "gray", Icon: "leaf", Symbol: "🌿"}

// Type is one prakriti entry
type Type struct {
	Name            string   `yaml:"name"`
	Elements        string   `yaml:"elements"`
	Description     string   `yaml:"description"`
	Characteristics []string `yaml:"characteristics"`
	Theme           Theme    `yaml:"theme"`
}

type document struct {
	Types []Type `yaml:"types"`
}

// Catalog is an immutable, ordered set of types
type Catalog struct {
	types []Type
	index map[string]int
}

// Parse builds a catalog from a YAML document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Types) == 0 {
		return nil, fmt.Errorf("catalog has no types")
	}

	c := &Catalog{
		types: doc.Types,
		index: make(map[string]int, len(doc.Types)),
	}
	for i, t := range doc.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, dup := c.index[t.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", t.Name)
		}
		c.index[t.Name] = i
	}
	return c, nil
}

// Default returns the built-in catalog. It panics if the embedded document is
// malformed, which is a build defect.
func Default() *Catalog {
	c, err := Parse(defaultDocument)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the type names in display order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.types))
	for i, t := range c.types {
		names[i] = t.Name
	}
	return names
}

// Types returns a copy of every entry in display order
func (c *Catalog) Types() []Type {
	out := make([]Type, len(c.types))
	copy(out, c.types)
	return out
}

// Rank returns the display position of a known name, or -1
func (c *Catalog) Rank(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// Lookup resolves a classifier label to a type. An exact match wins, then a
// case-insensitive one, then the closest name within maxLabelDistance edits.
func (c *Catalog) Lookup(label string) (Type, bool) {
	if i, ok := c.index[label]; ok {
		return c.types[i], true
	}

	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return Type{}, false
	}
	for _, t := range c.types {
		if strings.ToLower(t.Name) == normalized {
			return t, true
		}
	}

	best, bestDistance := -1, maxLabelDistance+1
	for i, t := range c.types {
		d := levenshtein.Distance(normalized, strings.ToLower(t.Name))
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}
	if best < 0 {
		return Type{}, false
	}
	return c.types[best], true
}

// ThemeFor returns the theme of label, or NeutralTheme when it is unknown
func (c *Catalog) ThemeFor(label string) Theme {
	if t, ok := c.Lookup(label); ok {
		return t.Theme
	}
	return NeutralTheme
}

// Response renders the catalog in the shape served at /api/prakriti-info
func (c *Catalog) Response() models.PrakritiCatalogResponse {
	resp := models.PrakritiCatalogResponse{
		PrakritiTypes: c.Names(),
		Details:       make(map[string]models.PrakritiTypeInfo, len(c.types)),
	}
	for _, t := range c.types {
		resp.Details[t.Name] = models.PrakritiTypeInfo{
			Elements:        t.Elements,
			Description:     t.Description,
			Characteristics: t.Characteristics,
		}
	}
	return resp
}
