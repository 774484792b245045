package graph

import (
	"fmt"

	"relgraph/internal/domain"
)

// OpKind names a local mutation
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
)

// Op is a local mutation of one edge. For a to-one edge Replace with no
// identifiers clears the value.
type Op struct {
	Kind    OpKind              `json:"op"`
	Related []domain.Identifier `json:"related,omitempty"`
}

// AddOp builds an add mutation
func AddOp(ids ...domain.Identifier) Op { return Op{Kind: OpAdd, Related: ids} }

// RemoveOp builds a remove mutation
func RemoveOp(ids ...domain.Identifier) Op { return Op{Kind: OpRemove, Related: ids} }

// ReplaceOp builds a replace mutation
func ReplaceOp(ids ...domain.Identifier) Op { return Op{Kind: OpReplace, Related: ids} }

// Update applies a local mutation to id.field. Polymorphic candidates are
// checked before anything changes, so a rejected mutation leaves the graph
// untouched.
func (g *Graph) Update(id domain.Identifier, field string, op Op) error {
	e, err := g.edgeFor(id, field)
	if err != nil {
		return err
	}
	def := e.Definition()
	if def.IsImplicit() {
		return fmt.Errorf("%w: %s on implicit edge %s.%s", ErrUnsupportedOperation, op.Kind, id, field)
	}
	if !def.IsCollection() && op.Kind != OpRemove && len(op.Related) > 1 {
		return fmt.Errorf("%w: %s of %d identifiers on to-one %s.%s",
			ErrUnsupportedOperation, op.Kind, len(op.Related), id, field)
	}
	if op.Kind != OpRemove {
		if err := g.validateCandidates(e, op.Related); err != nil {
			return err
		}
	}

	return g.run(func() error {
		switch op.Kind {
		case OpAdd:
			for _, related := range op.Related {
				g.link(localLayer, e, related, true)
			}
		case OpRemove:
			for _, related := range op.Related {
				g.unlink(localLayer, e, related, true)
			}
		case OpReplace:
			g.replaceLocal(e, op.Related)
		default:
			return fmt.Errorf("%w: unknown op %q", ErrUnsupportedOperation, op.Kind)
		}
		return nil
	})
}

// Add locally adds related to id.field
func (g *Graph) Add(id domain.Identifier, field string, related ...domain.Identifier) error {
	return g.Update(id, field, AddOp(related...))
}

// Remove locally removes related from id.field
func (g *Graph) Remove(id domain.Identifier, field string, related ...domain.Identifier) error {
	return g.Update(id, field, RemoveOp(related...))
}

// Replace locally sets the membership of id.field
func (g *Graph) Replace(id domain.Identifier, field string, related ...domain.Identifier) error {
	return g.Update(id, field, ReplaceOp(related...))
}

// replaceLocal applies the minimal diff between the effective membership and
// next. Members present in both are left alone.
func (g *Graph) replaceLocal(e Edge, next []domain.Identifier) {
	if re, ok := e.(*ResourceEdge); ok {
		if len(next) == 0 {
			if prev := re.value(localLayer); prev != nil {
				g.unlink(localLayer, e, *prev, true)
			} else if !re.localState.set && !re.hasReceivedData {
				g.touch(e)
				re.setLocal(nil)
			}
			return
		}
		g.link(localLayer, e, next[0], true)
		return
	}

	want := newOrderedSet(next...)
	for _, cur := range e.members(localLayer) {
		if !want.has(cur) {
			g.unlink(localLayer, e, cur, true)
		}
	}
	for _, id := range want.items {
		g.link(localLayer, e, id, true)
	}
}

// Rollback discards every pending local change owned by id. Reciprocals
// follow, so both sides return to their remote state.
func (g *Graph) Rollback(id domain.Identifier) error {
	return g.run(func() error {
		for _, e := range g.edgesOf(id) {
			switch edge := e.(type) {
			case *ResourceEdge:
				if !edge.localState.set {
					continue
				}
				if remote := edge.remoteState.id; remote != nil {
					g.link(localLayer, e, *remote, true)
				} else if local := edge.localState.id; local != nil {
					g.unlink(localLayer, e, *local, true)
				}
				if edge.localState.set {
					g.touch(e)
					edge.clearLocal()
				}
			case *CollectionEdge:
				for _, added := range edge.Additions() {
					g.unlink(localLayer, e, added, true)
				}
				for _, removed := range edge.Removals() {
					g.link(localLayer, e, removed, true)
				}
			}
		}
		return nil
	})
}

// Commit acknowledges a save of id: its effective relationships become remote
// state on both sides.
func (g *Graph) Commit(id domain.Identifier) error {
	return g.run(func() error {
		for _, e := range g.edgesOf(id) {
			switch edge := e.(type) {
			case *ResourceEdge:
				if !edge.localState.set {
					continue
				}
				switch local, remote := edge.localState.id, edge.remoteState.id; {
				case local != nil:
					g.link(remoteLayer, e, *local, true)
				case remote != nil:
					g.unlink(remoteLayer, e, *remote, true)
				default:
					g.touch(e)
					edge.setRemote(nil)
				}
			case *CollectionEdge:
				for _, removed := range edge.Removals() {
					g.unlink(remoteLayer, e, removed, true)
				}
				for _, added := range edge.Additions() {
					g.link(remoteLayer, e, added, true)
				}
				if !edge.hasReceivedData {
					g.touch(e)
					edge.hasReceivedData = true
					edge.dirty = true
				}
			}
		}
		return nil
	})
}

// DeleteRecord locally removes id from every relationship that tracks it. A
// record that was never persisted has nothing to roll back to and is unloaded
// instead.
func (g *Graph) DeleteRecord(id domain.Identifier, isNew bool) error {
	if isNew {
		g.Unload(id)
		return nil
	}
	return g.run(func() error {
		for _, e := range g.edgesOf(id) {
			if !e.Definition().HasInverse {
				continue
			}
			for _, related := range e.members(localLayer) {
				g.unlink(localLayer, e, related, true)
			}
		}
		return nil
	})
}
