package graph

import "relgraph/internal/domain"

// layer selects which side of an edge's state an operation reads or writes.
// The remote layer is server-confirmed state; the local layer is the effective
// state with pending client mutations applied.
type layer int

const (
	remoteLayer layer = iota
	localLayer
)

func (l layer) String() string {
	if l == remoteLayer {
		return "remote"
	}
	return "local"
}

// Edge is the relationship state of one (identifier, field). Edges are owned
// by a Graph and only change through its operations; the unexported methods
// keep the set of implementations closed.
type Edge interface {
	Identifier() domain.Identifier
	Definition() *EdgeDefinition
	Links() domain.Links
	Meta() domain.Meta
	HasReceivedData() bool
	IsStale() bool
	TransactionRef() int
	IsDirty() bool

	base() *edgeBase
	contains(l layer, id domain.Identifier) bool
	insert(l layer, id domain.Identifier) bool
	delete(l layer, id domain.Identifier) bool
	members(l layer) []domain.Identifier
	purge(id domain.Identifier) bool
	related() []domain.Identifier
	snapshot() domain.RelationshipData
}

// edgeBase holds the state every edge kind shares
type edgeBase struct {
	identifier domain.Identifier
	definition *EdgeDefinition
	links      domain.Links
	meta       domain.Meta

	hasReceivedData bool
	isStale         bool
	transactionRef  int
	dirty           bool
	destroyed       bool
}

func newEdgeBase(id domain.Identifier, def *EdgeDefinition) edgeBase {
	return edgeBase{identifier: id, definition: def}
}

func (b *edgeBase) base() *edgeBase { return b }

// Identifier returns the identifier owning the edge
func (b *edgeBase) Identifier() domain.Identifier { return b.identifier }

// Definition returns the resolved definition shared by all edges of the field
func (b *edgeBase) Definition() *EdgeDefinition { return b.definition }

// Links returns a copy of the last pushed links
func (b *edgeBase) Links() domain.Links { return copyLinks(b.links) }

// Meta returns a copy of the last pushed meta
func (b *edgeBase) Meta() domain.Meta { return copyMeta(b.meta) }

// HasReceivedData reports whether remote data was ever received
func (b *edgeBase) HasReceivedData() bool { return b.hasReceivedData }

// IsStale reports whether the related link changed without data
func (b *edgeBase) IsStale() bool { return b.isStale }

// TransactionRef is non-zero while a change to the edge awaits the close of
// the outermost batch. The value is the batch depth at which the edge first
// joined that flush; Graph.TransactionDepth reports the live nesting depth.
func (b *edgeBase) TransactionRef() int { return b.transactionRef }

// IsDirty reports whether the edge changed since its state was last
// materialized: a collection must recompute its cached membership, a to-one
// edge has not been through a flush yet. Reads never clear it on a to-one edge.
func (b *edgeBase) IsDirty() bool { return b.dirty }

func copyLinks(l domain.Links) domain.Links {
	if l == nil {
		return nil
	}
	out := make(domain.Links, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func copyMeta(m domain.Meta) domain.Meta {
	if m == nil {
		return nil
	}
	out := make(domain.Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newEdge(id domain.Identifier, def *EdgeDefinition) Edge {
	switch def.Kind {
	case KindCollection:
		return newCollectionEdge(id, def)
	case KindImplicit:
		return newImplicitEdge(id, def)
	}
	return newResourceEdge(id, def)
}
