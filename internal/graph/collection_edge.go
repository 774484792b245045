package graph

import "relgraph/internal/domain"

// CollectionEdge is the state of a to-many relationship.
//
// Remote state is the confirmed ordered membership. Local intent is kept as a
// diff on top of it: additions are never remote members and removals always
// are, so the two sets stay disjoint.
type CollectionEdge struct {
	edgeBase
	remoteState *orderedSet
	additions   *orderedSet
	removals    *orderedSet

	effective []domain.Identifier
}

func newCollectionEdge(id domain.Identifier, def *EdgeDefinition) *CollectionEdge {
	return &CollectionEdge{
		edgeBase:    newEdgeBase(id, def),
		remoteState: newOrderedSet(),
		additions:   newOrderedSet(),
		removals:    newOrderedSet(),
	}
}

// RemoteState returns the confirmed members in server order
func (e *CollectionEdge) RemoteState() []domain.Identifier { return e.remoteState.slice() }

// IsRemoteMember reports whether id is a confirmed member
func (e *CollectionEdge) IsRemoteMember(id domain.Identifier) bool { return e.remoteState.has(id) }

// Additions returns locally added members in insertion order
func (e *CollectionEdge) Additions() []domain.Identifier { return e.additions.slice() }

// Removals returns locally removed remote members in removal order
func (e *CollectionEdge) Removals() []domain.Identifier { return e.removals.slice() }

// HasLocalChanges reports whether any local intent is pending
func (e *CollectionEdge) HasLocalChanges() bool {
	return e.additions.len() > 0 || e.removals.len() > 0
}

// ComputeEffective derives (remote - removals) + additions. Retained remote
// members keep their order and additions follow in insertion order. It never
// writes edge state.
func (e *CollectionEdge) ComputeEffective() []domain.Identifier {
	out := make([]domain.Identifier, 0, e.remoteState.len()+e.additions.len())
	for _, id := range e.remoteState.items {
		if !e.removals.has(id) {
			out = append(out, id)
		}
	}
	return append(out, e.additions.items...)
}

// Members returns the effective membership, reusing the cached result until
// the edge changes
func (e *CollectionEdge) Members() []domain.Identifier {
	if e.dirty || e.effective == nil {
		e.effective = e.ComputeEffective()
		e.dirty = false
	}
	out := make([]domain.Identifier, len(e.effective))
	copy(out, e.effective)
	return out
}

func (e *CollectionEdge) contains(l layer, id domain.Identifier) bool {
	if l == remoteLayer {
		return e.remoteState.has(id)
	}
	return e.additions.has(id) || (e.remoteState.has(id) && !e.removals.has(id))
}

func (e *CollectionEdge) insert(l layer, id domain.Identifier) bool {
	if e.contains(l, id) {
		return false
	}
	if l == remoteLayer {
		e.remoteState.add(id)
		e.hasReceivedData = true
		// a pending addition is now satisfied
		e.additions.remove(id)
	} else if !e.removals.remove(id) {
		e.additions.add(id)
	}
	e.dirty = true
	return true
}

func (e *CollectionEdge) delete(l layer, id domain.Identifier) bool {
	if !e.contains(l, id) {
		return false
	}
	if l == remoteLayer {
		e.remoteState.remove(id)
		e.hasReceivedData = true
		// a pending removal is now moot
		e.removals.remove(id)
	} else if !e.additions.remove(id) {
		e.removals.add(id)
	}
	e.dirty = true
	return true
}

// orderRemote reorders confirmed members to match the pushed order. Callers
// have already made the membership identical.
func (e *CollectionEdge) orderRemote(order []domain.Identifier) {
	next := newOrderedSet(order...)
	if next.len() != e.remoteState.len() {
		return
	}
	for i, id := range next.items {
		if e.remoteState.items[i] != id {
			e.remoteState = next
			e.dirty = true
			return
		}
	}
}

func (e *CollectionEdge) members(l layer) []domain.Identifier {
	if l == remoteLayer {
		return e.remoteState.slice()
	}
	return e.ComputeEffective()
}

func (e *CollectionEdge) purge(id domain.Identifier) bool {
	a := e.remoteState.remove(id)
	b := e.additions.remove(id)
	c := e.removals.remove(id)
	if a || b || c {
		e.dirty = true
		return true
	}
	return false
}

func (e *CollectionEdge) related() []domain.Identifier {
	out := e.remoteState.slice()
	return append(out, e.additions.items...)
}

func (e *CollectionEdge) snapshot() domain.RelationshipData {
	rd := domain.RelationshipData{Links: copyLinks(e.links), Meta: copyMeta(e.meta)}
	if e.hasReceivedData || e.additions.len() > 0 {
		rd.Data = domain.Many(e.Members()...)
	}
	return rd
}
