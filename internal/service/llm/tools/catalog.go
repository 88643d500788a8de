package tools

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ToolSpec describes one tool the assistant may call.
type ToolSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
	Required    []string `yaml:"required"`
	Parameters  []string `yaml:"parameters"`
}

// Catalog is the set of known tools and their aliases.
type Catalog struct {
	Tools []ToolSpec `yaml:"tools"`
}

// LoadCatalog parses the embedded tool catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a YAML tool catalog and checks that no name is claimed twice.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal tool catalog: %w", err)
	}

	seen := make(map[string]string)
	for _, spec := range c.Tools {
		if spec.Name == "" {
			return nil, fmt.Errorf("tool catalog: entry with empty name")
		}
		for _, n := range append([]string{spec.Name}, spec.Aliases...) {
			if owner, dup := seen[n]; dup {
				return nil, fmt.Errorf("tool catalog: %q claimed by both %s and %s", n, owner, spec.Name)
			}
			seen[n] = spec.Name
		}
	}

	return &c, nil
}

// Spec looks up a tool by canonical name.
func (c *Catalog) Spec(name string) (ToolSpec, bool) {
	for _, spec := range c.Tools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}
