package differ

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pagediff/internal/pkg/types"
)

// NoiseConfig lists patterns for elements that carry no comparable content:
// dynamically generated tracking ids, analytics beacons, and similar.
type NoiseConfig struct {
	Tags               []string `yaml:"tags"`
	IDPrefixes         []string `yaml:"id_prefixes"`
	SelectorSubstrings []string `yaml:"selector_substrings"`
}

// LoadNoiseConfig reads a NoiseConfig from a YAML file.
func LoadNoiseConfig(path string) (*NoiseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading noise config: %w", err)
	}
	var cfg NoiseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing noise config %s: %w", path, err)
	}
	return &cfg, nil
}

// NoiseFilter excludes known-noise selectors from the index before any
// difference computation. It is a pre-filter: exclusion never depends on
// whether the selector later turns out to be unique or differing.
type NoiseFilter struct {
	tags       map[string]struct{}
	idPrefixes []string
	substrings []string
}

// NewNoiseFilter compiles a NoiseConfig.
func NewNoiseFilter(cfg *NoiseConfig) *NoiseFilter {
	f := &NoiseFilter{tags: make(map[string]struct{}, len(cfg.Tags))}
	for _, tag := range cfg.Tags {
		f.tags[strings.ToLower(tag)] = struct{}{}
	}
	f.idPrefixes = append(f.idPrefixes, cfg.IDPrefixes...)
	f.substrings = append(f.substrings, cfg.SelectorSubstrings...)
	return f
}

// Match reports whether the node matches a noise pattern. A nil filter
// matches nothing.
func (f *NoiseFilter) Match(node *types.DomNode) bool {
	if f == nil {
		return false
	}
	if _, ok := f.tags[node.Tag]; ok {
		return true
	}
	if id := node.Attr("id"); id != "" {
		for _, prefix := range f.idPrefixes {
			if strings.HasPrefix(id, prefix) {
				return true
			}
		}
	}
	for _, substring := range f.substrings {
		if strings.Contains(node.Selector, substring) {
			return true
		}
	}
	return false
}
