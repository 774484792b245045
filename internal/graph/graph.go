package graph

import (
	"log/slog"
	"reflect"
	"sort"

	"relgraph/internal/domain"
	"relgraph/internal/logger"
)

// BucketRelationships is the notification bucket for relationship changes
const BucketRelationships = "relationships"

// SchemaService describes the relationship fields of each resource type
type SchemaService interface {
	Relationships(typ string) (map[string]domain.Relationship, bool)
	HasType(typ string) bool
}

// IdentityService upgrades raw references to stable identifiers
type IdentityService interface {
	GetOrCreate(ref domain.ResourceIdentifier) (domain.Identifier, error)
}

// Capabilities is everything a Graph needs from its owning store
type Capabilities interface {
	Schema() SchemaService
	Identity() IdentityService
	NotifyChange(id domain.Identifier, bucket, key string)
}

// Options configure a Graph
type Options struct {
	// Logger receives debug and recovery messages. Defaults to a discard logger.
	Logger *slog.Logger
	// Debug turns invariant violations into panics instead of best-effort
	// recovery.
	Debug bool
}

// Graph owns every relationship edge of one store. It is not safe for
// concurrent use; callers serialize access the way a single event loop would.
type Graph struct {
	caps     Capabilities
	resolver *Resolver
	edges    map[domain.Identifier]map[string]Edge
	log      *slog.Logger
	debug    bool

	depth     int
	queue     []syncOp
	touched   []Edge
	snapshots map[Edge]domain.RelationshipData
	destroyed bool
}

// New creates a graph for the given store capabilities
func New(caps Capabilities, opts Options) *Graph {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Graph{
		caps:      caps,
		resolver:  NewResolver(caps.Schema()),
		edges:     make(map[domain.Identifier]map[string]Edge),
		log:       log.With(logger.Scope("graph")),
		debug:     opts.Debug,
		snapshots: make(map[Edge]domain.RelationshipData),
	}
}

// Resolver exposes the definition resolver, mainly for introspection
func (g *Graph) Resolver() *Resolver { return g.resolver }

// Get returns the edge for id.field, creating it on first access
func (g *Graph) Get(id domain.Identifier, field string) (Edge, error) {
	return g.edgeFor(id, field)
}

// Has reports whether the edge exists. It never creates one.
func (g *Graph) Has(id domain.Identifier, field string) bool {
	return g.peek(id, field) != nil
}

// GetDefinition returns the resolved definition of id's field
func (g *Graph) GetDefinition(id domain.Identifier, field string) (*EdgeDefinition, error) {
	return g.resolver.Resolve(id.Type, field)
}

// GetData returns the externally consumable snapshot of id.field
func (g *Graph) GetData(id domain.Identifier, field string) (domain.RelationshipData, error) {
	e, err := g.edgeFor(id, field)
	if err != nil {
		return domain.RelationshipData{}, err
	}
	if e.Definition().IsImplicit() {
		return domain.RelationshipData{}, ErrImplicitEdge
	}
	return e.snapshot(), nil
}

// Identifiers returns every identifier that owns at least one edge
func (g *Graph) Identifiers() []domain.Identifier {
	out := make([]domain.Identifier, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.LID < b.LID
	})
	return out
}

// Fields returns the materialized field keys of id, implicit ones excluded
func (g *Graph) Fields(id domain.Identifier) []string {
	var out []string
	for key, e := range g.edges[id] {
		if !e.Definition().IsImplicit() {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// TransactionDepth returns the number of open batches
func (g *Graph) TransactionDepth() int { return g.depth }

func (g *Graph) peek(id domain.Identifier, field string) Edge {
	if fields, ok := g.edges[id]; ok {
		return fields[field]
	}
	return nil
}

func (g *Graph) edgeFor(id domain.Identifier, field string) (Edge, error) {
	if e := g.peek(id, field); e != nil {
		return e, nil
	}
	def, err := g.resolver.Resolve(id.Type, field)
	if err != nil {
		return nil, err
	}
	e := newEdge(id, def)
	fields, ok := g.edges[id]
	if !ok {
		fields = make(map[string]Edge)
		g.edges[id] = fields
	}
	fields[field] = e
	g.log.Debug("edge created", "identifier", id.String(), "field", field, "kind", string(def.Kind))
	return e, nil
}

// edgesOf returns id's edges ordered by field key
func (g *Graph) edgesOf(id domain.Identifier) []Edge {
	fields := g.edges[id]
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Edge, len(keys))
	for i, key := range keys {
		out[i] = fields[key]
	}
	return out
}

// Batch runs fn as one transaction. Reciprocal propagation and notifications
// are deferred until the outermost batch closes. Mutations fn already made are
// kept when it returns an error.
func (g *Graph) Batch(fn func() error) error {
	return g.run(fn)
}

func (g *Graph) run(fn func() error) error {
	g.depth++
	defer func() {
		g.depth--
		if g.depth == 0 {
			g.flush()
		}
	}()
	return fn()
}

// touch records the externally visible state of e before its first change in
// the current batch
func (g *Graph) touch(e Edge) {
	b := e.base()
	if b.transactionRef > 0 {
		return
	}
	ref := g.depth
	if ref == 0 {
		ref = 1
	}
	b.transactionRef = ref
	g.touched = append(g.touched, e)
	if !b.definition.IsImplicit() {
		g.snapshots[e] = e.snapshot()
	}
}

// flush drains deferred propagation, then notifies for every edge whose
// visible data differs from its pre-batch snapshot
func (g *Graph) flush() {
	for len(g.queue) > 0 {
		op := g.queue[0]
		g.queue = g.queue[1:]
		g.apply(op)
	}
	g.queue = nil

	touched, snapshots := g.touched, g.snapshots
	g.touched = nil
	g.snapshots = make(map[Edge]domain.RelationshipData)

	for _, e := range touched {
		b := e.base()
		b.transactionRef = 0
		if _, ok := e.(*ResourceEdge); ok {
			b.dirty = false
		}
		if b.destroyed || b.definition.IsImplicit() {
			continue
		}
		if reflect.DeepEqual(snapshots[e], e.snapshot()) {
			continue
		}
		g.caps.NotifyChange(b.identifier, BucketRelationships, b.definition.Key)
	}
}

func (g *Graph) destroy() {
	g.destroyed = true
	for _, fields := range g.edges {
		for _, e := range fields {
			e.base().destroyed = true
		}
	}
	g.edges = make(map[domain.Identifier]map[string]Edge)
	g.queue = nil
	g.touched = nil
	g.snapshots = make(map[Edge]domain.RelationshipData)
}
