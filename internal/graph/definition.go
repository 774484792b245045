package graph

import (
	"fmt"
	"sort"
	"strings"

	"relgraph/internal/domain"
)

// EdgeKind is the shape of the state container behind an edge
type EdgeKind string

const (
	KindResource   EdgeKind = "resource"
	KindCollection EdgeKind = "collection"
	KindImplicit   EdgeKind = "implicit"
)

// implicitPrefix starts every synthesized inverse key. Schema field names
// never contain the separator characters used after it.
const implicitPrefix = "implicit-"

// EdgeDefinition is the canonical, resolved metadata for one (type, field).
// Definitions are immutable once resolved and shared by every edge of the pair.
type EdgeDefinition struct {
	Key         string   `json:"key"`
	Type        string   `json:"type"`
	RelatedType string   `json:"related_type"`
	Kind        EdgeKind `json:"kind"`

	IsAsync           bool `json:"is_async,omitempty"`
	IsPolymorphic     bool `json:"is_polymorphic,omitempty"`
	IsSelfReferential bool `json:"is_self_referential,omitempty"`
	// IsReflexive marks a self-referential field that is its own inverse.
	IsReflexive bool `json:"is_reflexive,omitempty"`

	// HasInverse is false only for inverse: null.
	HasInverse           bool     `json:"has_inverse"`
	InverseKey           string   `json:"inverse_key,omitempty"`
	InverseKind          EdgeKind `json:"inverse_kind,omitempty"` // empty while the concrete related type is unknown
	InverseIsImplicit    bool     `json:"inverse_is_implicit,omitempty"`
	InverseIsAsync       bool     `json:"inverse_is_async,omitempty"`
	InverseIsPolymorphic bool     `json:"inverse_is_polymorphic,omitempty"`
}

// IsImplicit reports whether the definition describes synthetic bookkeeping
func (d *EdgeDefinition) IsImplicit() bool { return d.Kind == KindImplicit }

// IsCollection reports whether the edge is to-many
func (d *EdgeDefinition) IsCollection() bool { return d.Kind == KindCollection }

// tracksReciprocal reports whether mutations of this edge must be mirrored
func (d *EdgeDefinition) tracksReciprocal() bool { return d.HasInverse }

// implicitKeyFor derives the key of the synthetic inverse of typ.field. The
// owning field is part of the key so two undeclared relationships between the
// same pair of types never share bookkeeping.
func implicitKeyFor(typ, field, relatedType string) string {
	return implicitPrefix + typ + ":" + field + "->" + relatedType
}

// IsImplicitKey reports whether a field key names synthetic bookkeeping
func IsImplicitKey(key string) bool {
	return strings.HasPrefix(key, implicitPrefix)
}

type defKey struct {
	typ   string
	field string
}

// Resolver derives and caches edge definitions from the schema service
type Resolver struct {
	schema   SchemaService
	defs     map[defKey]*EdgeDefinition
	implicit map[string]*EdgeDefinition
}

// NewResolver creates a resolver backed by the given schema service
func NewResolver(schema SchemaService) *Resolver {
	return &Resolver{
		schema:   schema,
		defs:     make(map[defKey]*EdgeDefinition),
		implicit: make(map[string]*EdgeDefinition),
	}
}

// Resolve returns the definition of typ.field, resolving and caching it on
// first use
func (r *Resolver) Resolve(typ, field string) (*EdgeDefinition, error) {
	key := defKey{typ: typ, field: field}
	if def, ok := r.defs[key]; ok {
		return def, nil
	}

	if IsImplicitKey(field) {
		tmpl, ok := r.implicit[field]
		if !ok {
			return nil, schemaErrorf(typ, field, "implicit key was never synthesized")
		}
		def := *tmpl
		def.Type = typ
		r.defs[key] = &def
		return &def, nil
	}

	def, err := r.resolveDeclared(typ, field)
	if err != nil {
		return nil, err
	}
	r.defs[key] = def
	return def, nil
}

// ResolveType resolves every declared relationship of typ, sorted by field
func (r *Resolver) ResolveType(typ string) ([]*EdgeDefinition, error) {
	rels, ok := r.schema.Relationships(typ)
	if !ok {
		return nil, schemaErrorf(typ, "*", "type is not defined")
	}
	names := make([]string, 0, len(rels))
	for name := range rels {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]*EdgeDefinition, 0, len(names))
	for _, name := range names {
		def, err := r.Resolve(typ, name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (r *Resolver) resolveDeclared(typ, field string) (*EdgeDefinition, error) {
	rels, ok := r.schema.Relationships(typ)
	if !ok {
		return nil, schemaErrorf(typ, field, "type is not defined")
	}
	rel, ok := rels[field]
	if !ok {
		return nil, schemaErrorf(typ, field, "no relationship with this name")
	}
	if !rel.Kind.Valid() {
		return nil, schemaErrorf(typ, field, "invalid relationship kind %q", rel.Kind)
	}
	if rel.RelatedType == "" {
		return nil, schemaErrorf(typ, field, "related type is empty")
	}

	def := &EdgeDefinition{
		Key:               field,
		Type:              typ,
		RelatedType:       rel.RelatedType,
		Kind:              edgeKindOf(rel),
		IsAsync:           rel.Async,
		IsPolymorphic:     rel.Polymorphic,
		IsSelfReferential: typ == rel.RelatedType,
	}

	switch rel.Inverse.Mode {
	case domain.InverseNone:
		return def, nil
	case domain.InverseNamed:
		if err := r.resolveNamedInverse(def, rel); err != nil {
			return nil, err
		}
		return def, nil
	}
	if err := r.resolveUndeclaredInverse(def, rel); err != nil {
		return nil, err
	}
	return def, nil
}

func (r *Resolver) resolveNamedInverse(def *EdgeDefinition, rel domain.Relationship) error {
	def.HasInverse = true
	def.InverseKey = rel.Inverse.Name
	def.IsReflexive = def.IsSelfReferential && rel.Inverse.Name == def.Key

	relatedRels, ok := r.schema.Relationships(rel.RelatedType)
	if !ok {
		if rel.Polymorphic {
			// abstract related type: the inverse lives on whichever concrete
			// type shows up and is checked when it does
			return nil
		}
		return schemaErrorf(def.Type, def.Key, "related type %q is not defined", rel.RelatedType)
	}

	inv, ok := relatedRels[rel.Inverse.Name]
	if !ok {
		return schemaErrorf(def.Type, def.Key, "inverse %q is not declared on %q", rel.Inverse.Name, rel.RelatedType)
	}
	switch {
	case inv.Inverse.IsNull():
		return schemaErrorf(def.Type, def.Key, "inverse %s.%s declares inverse: null", rel.RelatedType, inv.Name)
	case inv.Inverse.IsNamed() && inv.Inverse.Name != def.Key:
		return schemaErrorf(def.Type, def.Key, "inverse %s.%s points back at %q", rel.RelatedType, inv.Name, inv.Inverse.Name)
	case inv.RelatedType != def.Type && !inv.Polymorphic && !rel.Polymorphic:
		return schemaErrorf(def.Type, def.Key, "inverse %s.%s relates to %q", rel.RelatedType, inv.Name, inv.RelatedType)
	}

	def.InverseKind = edgeKindOf(inv)
	def.InverseIsAsync = inv.Async
	def.InverseIsPolymorphic = inv.Polymorphic
	return nil
}

func (r *Resolver) resolveUndeclaredInverse(def *EdgeDefinition, rel domain.Relationship) error {
	relatedRels, ok := r.schema.Relationships(rel.RelatedType)
	if !ok && !rel.Polymorphic {
		return schemaErrorf(def.Type, def.Key, "related type %q is not defined", rel.RelatedType)
	}

	var claimers []domain.Relationship
	for _, other := range relatedRels {
		if !other.Inverse.IsNamed() || other.Inverse.Name != def.Key {
			continue
		}
		if other.RelatedType == def.Type || other.Polymorphic {
			claimers = append(claimers, other)
		}
	}

	switch len(claimers) {
	case 0:
	case 1:
		inv := claimers[0]
		def.HasInverse = true
		def.InverseKey = inv.Name
		def.InverseKind = edgeKindOf(inv)
		def.InverseIsAsync = inv.Async
		def.InverseIsPolymorphic = inv.Polymorphic
		def.IsReflexive = def.IsSelfReferential && inv.Name == def.Key
		return nil
	default:
		names := make([]string, len(claimers))
		for i, c := range claimers {
			names[i] = c.Name
		}
		sort.Strings(names)
		return schemaErrorf(def.Type, def.Key, "inverse is ambiguous, claimed by %s on %q",
			strings.Join(names, ", "), rel.RelatedType)
	}

	key := implicitKeyFor(def.Type, def.Key, rel.RelatedType)
	def.HasInverse = true
	def.InverseKey = key
	def.InverseKind = KindImplicit
	def.InverseIsImplicit = true

	r.implicit[key] = &EdgeDefinition{
		Key:               key,
		Type:              rel.RelatedType,
		RelatedType:       def.Type,
		Kind:              KindImplicit,
		IsSelfReferential: def.IsSelfReferential,
		HasInverse:        true,
		InverseKey:        def.Key,
		InverseKind:       def.Kind,
		InverseIsAsync:    def.IsAsync,
	}
	return nil
}

func edgeKindOf(rel domain.Relationship) EdgeKind {
	if rel.IsCollection() {
		return KindCollection
	}
	return KindResource
}

// String renders a one-line summary used by logs and the CLI
func (d *EdgeDefinition) String() string {
	inverse := "null"
	if d.HasInverse {
		inverse = d.InverseKey
	}
	return fmt.Sprintf("%s.%s (%s -> %s, inverse %s)", d.Type, d.Key, d.Kind, d.RelatedType, inverse)
}
