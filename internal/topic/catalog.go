package topic

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Subject is a named list of lesson topics for one exam subject.
type Subject struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Topics  []string `yaml:"topics"`
}

// Entry is a single cross-subject topic from the default list.
type Entry struct {
	Subject string `yaml:"subject"`
	Topic   string `yaml:"topic"`
}

// Catalog holds the per-subject topic lists and the default
// cross-subject list used when no subject is known.
type Catalog struct {
	Subjects []Subject `yaml:"subjects"`
	Default  []Entry   `yaml:"default"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog. It is parsed once.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = ParseCatalog(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse topic catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every list is non-empty and subject keys are unique.
func (c *Catalog) Validate() error {
	if len(c.Default) == 0 {
		return fmt.Errorf("topic catalog: default list is empty")
	}
	seen := make(map[string]bool, len(c.Subjects))
	for _, s := range c.Subjects {
		if s.Key == "" {
			return fmt.Errorf("topic catalog: subject %q has no key", s.Name)
		}
		if seen[s.Key] {
			return fmt.Errorf("topic catalog: duplicate subject key %q", s.Key)
		}
		seen[s.Key] = true
		if len(s.Topics) == 0 {
			return fmt.Errorf("topic catalog: subject %q has no topics", s.Key)
		}
	}
	return nil
}

// Lookup resolves a catalog key against subject keys, display names and
// aliases, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(key string) (*Subject, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	for i := range c.Subjects {
		s := &c.Subjects[i]
		if strings.EqualFold(s.Key, key) || strings.EqualFold(s.Name, key) {
			return s, true
		}
		for _, a := range s.Aliases {
			if strings.EqualFold(a, key) {
				return s, true
			}
		}
	}
	return nil, false
}
