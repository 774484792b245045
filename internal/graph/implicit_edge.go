package graph

import "relgraph/internal/domain"

// ImplicitEdge records which resources point at its owner through a
// relationship that declared no inverse. It exists so unloading the owner can
// patch those relationships; it is never externally visible.
type ImplicitEdge struct {
	edgeBase
	remoteMembers *orderedSet
	localMembers  *orderedSet
}

func newImplicitEdge(id domain.Identifier, def *EdgeDefinition) *ImplicitEdge {
	return &ImplicitEdge{
		edgeBase:      newEdgeBase(id, def),
		remoteMembers: newOrderedSet(),
		localMembers:  newOrderedSet(),
	}
}

// RemoteMembers returns the confirmed referrers
func (e *ImplicitEdge) RemoteMembers() []domain.Identifier { return e.remoteMembers.slice() }

// LocalMembers returns the effective referrers
func (e *ImplicitEdge) LocalMembers() []domain.Identifier { return e.localMembers.slice() }

func (e *ImplicitEdge) set(l layer) *orderedSet {
	if l == remoteLayer {
		return e.remoteMembers
	}
	return e.localMembers
}

func (e *ImplicitEdge) contains(l layer, id domain.Identifier) bool {
	return e.set(l).has(id)
}

// insert on the remote layer also counts the referrer locally; a referrer
// whose local state disagrees is corrected by alignment afterwards.
func (e *ImplicitEdge) insert(l layer, id domain.Identifier) bool {
	changed := e.set(l).add(id)
	if l == remoteLayer {
		e.hasReceivedData = true
		changed = e.localMembers.add(id) || changed
	}
	return changed
}

func (e *ImplicitEdge) delete(l layer, id domain.Identifier) bool {
	changed := e.set(l).remove(id)
	if l == remoteLayer {
		changed = e.localMembers.remove(id) || changed
	}
	return changed
}

func (e *ImplicitEdge) members(l layer) []domain.Identifier {
	return e.set(l).slice()
}

func (e *ImplicitEdge) purge(id domain.Identifier) bool {
	a := e.remoteMembers.remove(id)
	b := e.localMembers.remove(id)
	return a || b
}

func (e *ImplicitEdge) related() []domain.Identifier {
	out := e.remoteMembers.slice()
	for _, id := range e.localMembers.items {
		if !e.remoteMembers.has(id) {
			out = append(out, id)
		}
	}
	return out
}

func (e *ImplicitEdge) snapshot() domain.RelationshipData {
	return domain.RelationshipData{}
}
