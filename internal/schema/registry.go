// Package schema holds the relationship declarations of each resource type
package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"relgraph/internal/domain"
)

// Registry is an in-memory schema service
type Registry struct {
	mu    sync.RWMutex
	types map[string]map[string]domain.Relationship
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]map[string]domain.Relationship)}
}

// Define registers typ with the given relationship fields. Defining a type
// twice replaces its fields.
func (r *Registry) Define(typ string, rels ...domain.Relationship) error {
	if typ == "" {
		return fmt.Errorf("define type: name is empty")
	}
	fields := make(map[string]domain.Relationship, len(rels))
	for _, rel := range rels {
		if rel.Name == "" {
			return fmt.Errorf("define %s: relationship name is empty", typ)
		}
		if _, dup := fields[rel.Name]; dup {
			return fmt.Errorf("define %s: relationship %q declared twice", typ, rel.Name)
		}
		if !rel.Kind.Valid() {
			return fmt.Errorf("define %s.%s: invalid kind %q", typ, rel.Name, rel.Kind)
		}
		fields[rel.Name] = rel
	}

	r.mu.Lock()
	r.types[typ] = fields
	r.mu.Unlock()
	return nil
}

// Relationships returns a copy of typ's relationship fields
func (r *Registry) Relationships(typ string) (map[string]domain.Relationship, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, ok := r.types[typ]
	if !ok {
		return nil, false
	}
	out := make(map[string]domain.Relationship, len(fields))
	for name, rel := range fields {
		out[name] = rel
	}
	return out, true
}

// HasType reports whether typ was defined
func (r *Registry) HasType(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[typ]
	return ok
}

// Types returns every defined type name, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.types))
	for typ := range r.types {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// NormalizeType converts a model name such as "BlogPost" or "blog_post" to the
// dasherized type key "blog-post"
func NormalizeType(name string) string {
	return strings.ReplaceAll(inflect.Underscore(strings.TrimSpace(name)), "_", "-")
}

// InferRelatedType guesses the related type of a field that did not name one:
// "comments" relates to "comment"
func InferRelatedType(field string) string {
	return NormalizeType(inflect.Singularize(field))
}
