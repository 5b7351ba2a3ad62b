// Package catalog holds the hand-maintained portfolio metadata: description
// and preview image overrides per repository, and the ordered featured list.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry overrides what GitHub reports for one repository. Empty fields are
// absent.
type Entry struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
}

// Catalog is immutable once built.
type Catalog struct {
	overlay  map[string]Entry
	featured []string
}

// Normalize lowercases and trims name and drops everything outside [a-z0-9],
// so "My-Repo!" and "myrepo" share a key.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// New normalizes every key. When several overlay names share a key, the
// lexically smallest raw name wins; Parse rejects such files outright.
// Repeated featured keys keep their first position.
func New(overlay map[string]Entry, featured []string) *Catalog {
	c := &Catalog{
		overlay:  make(map[string]Entry, len(overlay)),
		featured: make([]string, 0, len(featured)),
	}
	for _, name := range sortedNames(overlay) {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, dup := c.overlay[key]; dup {
			continue
		}
		entry := overlay[name]
		c.overlay[key] = Entry{
			Description: strings.TrimSpace(entry.Description),
			Image:       strings.TrimSpace(entry.Image),
		}
	}

	seen := make(map[string]bool, len(featured))
	for _, name := range featured {
		key := Normalize(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		c.featured = append(c.featured, key)
	}
	return c
}

// Lookup accepts a raw name or an already normalized key.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.overlay[Normalize(name)]
	return e, ok
}

func (c *Catalog) Image(name string) (string, bool) {
	e, ok := c.Lookup(name)
	if !ok || e.Image == "" {
		return "", false
	}
	return e.Image, true
}

// Featured returns the featured keys in display order.
func (c *Catalog) Featured() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.featured))
	copy(out, c.featured)
	return out
}

type file struct {
	Featured []string         `yaml:"featured,omitempty"`
	Projects map[string]Entry `yaml:"projects"`
}

func sortedNames(overlay map[string]Entry) []string {
	names := make([]string, 0, len(overlay))
	for name := range overlay {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse reads the catalog YAML format used by the embedded default. Project
// names that normalize to the same key are an error.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	owner := make(map[string]string, len(f.Projects))
	for _, name := range sortedNames(f.Projects) {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if prev, ok := owner[key]; ok {
			return nil, fmt.Errorf("parsing catalog: projects %q and %q share key %q", prev, name, key)
		}
		owner[key] = name
	}

	return New(f.Projects, f.Featured), nil
}

// Marshal renders overlay entries in the same format Parse reads.
func Marshal(projects map[string]Entry) ([]byte, error) {
	out, err := yaml.Marshal(file{Projects: projects})
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	return out, nil
}

//go:embed catalog.yaml
var defaultData []byte

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(err)
	}
	return c
})

// Default is the catalog compiled into the binary.
func Default() *Catalog {
	return loadDefault()
}
