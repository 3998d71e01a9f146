// Package category provides the suggested transaction categories offered to
// clients. Categories are advisory and never enforced on transactions.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmptyCatalogue = errors.New("category catalogue is empty")

// Defaults are used when no catalogue file is configured
var Defaults = []string{
	"مكتب", "تسويق", "راتب", "إيجار", "كهرباء", "إنترنت", "هاتف",
	"مواد خام", "معدات", "صيانة", "سفر", "وقود", "أخرى",
}

type catalogueFile struct {
	Categories []string `yaml:"categories"`
}

// Catalogue is an ordered, de-duplicated list of category labels
type Catalogue struct {
	names []string
}

// New builds a catalogue from names, dropping blanks and duplicates
func New(names []string) *Catalogue {
	seen := make(map[string]struct{}, len(names))
	c := &Catalogue{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		c.names = append(c.names, n)
	}
	return c
}

// Load reads a YAML catalogue from path. An empty path yields the defaults.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return New(Defaults), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category file %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document of the form `categories: [...]`
func Parse(raw []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse category file: %w", err)
	}
	c := New(f.Categories)
	if len(c.names) == 0 {
		return nil, ErrEmptyCatalogue
	}
	return c, nil
}

// Names returns a copy of the catalogue labels
func (c *Catalogue) Names() []string {
	return append([]string(nil), c.names...)
}
