package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"relgraph/internal/domain"
)

// FileYAML represents the schema file structure
type FileYAML struct {
	Version string               `yaml:"version"`
	Types   map[string]*TypeYAML `yaml:"types"`
}

// TypeYAML represents one resource type
type TypeYAML struct {
	Relationships map[string]*RelationshipYAML `yaml:"relationships,omitempty"`
}

// RelationshipYAML represents one relationship field. Inverse stays a raw
// node so "inverse: null" can be told apart from a missing key.
type RelationshipYAML struct {
	Kind        string    `yaml:"kind"`
	Type        string    `yaml:"type,omitempty"`
	Async       bool      `yaml:"async,omitempty"`
	Polymorphic bool      `yaml:"polymorphic,omitempty"`
	Inverse     yaml.Node `yaml:"inverse,omitempty"`
	As          string    `yaml:"as,omitempty"`
}

// LoadYAML loads a schema registry from a YAML file
func LoadYAML(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a schema registry from YAML bytes
func ParseYAML(data []byte) (*Registry, error) {
	var file FileYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return convertYAMLToRegistry(&file)
}

func convertYAMLToRegistry(f *FileYAML) (*Registry, error) {
	if len(f.Types) == 0 {
		return nil, fmt.Errorf("schema declares no types")
	}

	reg := NewRegistry()
	names := make([]string, 0, len(f.Types))
	for name := range f.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		typ := NormalizeType(name)
		var rels []domain.Relationship
		if t := f.Types[name]; t != nil {
			for field, ry := range t.Relationships {
				if ry == nil {
					return nil, fmt.Errorf("%s.%s: empty relationship", typ, field)
				}
				rel, err := convertRelationship(field, ry)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", typ, field, err)
				}
				rels = append(rels, rel)
			}
		}
		if err := reg.Define(typ, rels...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func convertRelationship(field string, ry *RelationshipYAML) (domain.Relationship, error) {
	kind, err := parseKind(ry.Kind)
	if err != nil {
		return domain.Relationship{}, err
	}
	inverse, err := parseInverse(&ry.Inverse)
	if err != nil {
		return domain.Relationship{}, err
	}

	related := ry.Type
	if related == "" {
		related = InferRelatedType(field)
	} else {
		related = NormalizeType(related)
	}
	as := ry.As
	if as != "" {
		as = NormalizeType(as)
	}

	return domain.Relationship{
		Name:        field,
		Kind:        kind,
		RelatedType: related,
		Async:       ry.Async,
		Polymorphic: ry.Polymorphic,
		Inverse:     inverse,
		As:          as,
	}, nil
}

func parseKind(s string) (domain.RelationshipKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resource", "belongsto", "belongs-to", "belongs_to", "one":
		return domain.KindResource, nil
	case "collection", "hasmany", "has-many", "has_many", "many":
		return domain.KindCollection, nil
	}
	return "", fmt.Errorf("unknown relationship kind %q", s)
}

func parseInverse(n *yaml.Node) (domain.Inverse, error) {
	if n.Kind == 0 {
		return domain.Inverse{}, nil
	}
	if n.Kind != yaml.ScalarNode {
		return domain.Inverse{}, fmt.Errorf("inverse must be a field name or null")
	}
	if n.Tag == "!!null" {
		return domain.NoInverse(), nil
	}
	var name string
	if err := n.Decode(&name); err != nil {
		return domain.Inverse{}, fmt.Errorf("decode inverse: %w", err)
	}
	if name == "" {
		return domain.Inverse{}, fmt.Errorf("inverse name is empty")
	}
	return domain.NamedInverse(name), nil
}
