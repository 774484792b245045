package graph

import "relgraph/internal/domain"

// slot is a to-one value that distinguishes unset from null
type slot struct {
	set bool
	id  *domain.Identifier
}

func (s slot) is(id domain.Identifier) bool {
	return s.id != nil && *s.id == id
}

func (s slot) equal(o slot) bool {
	if s.id == nil || o.id == nil {
		return s.id == nil && o.id == nil
	}
	return *s.id == *o.id
}

func valueSlot(id *domain.Identifier) slot {
	if id == nil {
		return slot{set: true}
	}
	v := *id
	return slot{set: true, id: &v}
}

// ResourceEdge is the state of a to-one relationship
type ResourceEdge struct {
	edgeBase
	localState  slot
	remoteState slot
}

func newResourceEdge(id domain.Identifier, def *EdgeDefinition) *ResourceEdge {
	return &ResourceEdge{edgeBase: newEdgeBase(id, def)}
}

// LocalState returns the pending local value. The bool is false when no local
// value is set; a nil identifier with true means locally cleared.
func (e *ResourceEdge) LocalState() (*domain.Identifier, bool) {
	return cloneID(e.localState.id), e.localState.set
}

// RemoteState returns the last confirmed value. The bool is false when the
// remote side never reported a value.
func (e *ResourceEdge) RemoteState() (*domain.Identifier, bool) {
	return cloneID(e.remoteState.id), e.remoteState.set
}

// Value returns the effective related identifier, nil when empty
func (e *ResourceEdge) Value() *domain.Identifier {
	return cloneID(e.effective().id)
}

func (e *ResourceEdge) effective() slot {
	if e.localState.set {
		return e.localState
	}
	return e.remoteState
}

func (e *ResourceEdge) contains(l layer, id domain.Identifier) bool {
	if l == remoteLayer {
		return e.remoteState.is(id)
	}
	return e.effective().is(id)
}

func (e *ResourceEdge) value(l layer) *domain.Identifier {
	if l == remoteLayer {
		return e.remoteState.id
	}
	return e.effective().id
}

func (e *ResourceEdge) insert(l layer, id domain.Identifier) bool {
	if e.contains(l, id) {
		return false
	}
	if l == remoteLayer {
		e.setRemote(&id)
	} else {
		e.setLocal(&id)
	}
	return true
}

func (e *ResourceEdge) delete(l layer, id domain.Identifier) bool {
	if !e.contains(l, id) {
		return false
	}
	if l == remoteLayer {
		e.setRemote(nil)
	} else {
		e.setLocal(nil)
	}
	return true
}

// setRemote records a confirmed value. A local value the remote side now
// agrees with is satisfied and dropped.
func (e *ResourceEdge) setRemote(id *domain.Identifier) {
	e.remoteState = valueSlot(id)
	e.hasReceivedData = true
	e.dirty = true
	e.settle()
}

func (e *ResourceEdge) setLocal(id *domain.Identifier) {
	e.localState = valueSlot(id)
	e.dirty = true
	e.settle()
}

// settle drops a local value equal to received remote state
func (e *ResourceEdge) settle() {
	if e.localState.set && e.hasReceivedData && e.localState.equal(e.remoteState) {
		e.localState = slot{}
	}
}

func (e *ResourceEdge) clearLocal() bool {
	if !e.localState.set {
		return false
	}
	e.localState = slot{}
	e.dirty = true
	return true
}

func (e *ResourceEdge) members(l layer) []domain.Identifier {
	if v := e.value(l); v != nil {
		return []domain.Identifier{*v}
	}
	return nil
}

func (e *ResourceEdge) purge(id domain.Identifier) bool {
	changed := false
	if e.remoteState.is(id) {
		e.remoteState = slot{set: true}
		changed = true
	}
	if e.localState.is(id) {
		e.localState = slot{set: true}
		changed = true
	}
	if changed {
		e.dirty = true
		e.settle()
	}
	return changed
}

func (e *ResourceEdge) related() []domain.Identifier {
	var out []domain.Identifier
	if e.remoteState.id != nil {
		out = append(out, *e.remoteState.id)
	}
	if e.localState.id != nil && !e.localState.equal(e.remoteState) {
		out = append(out, *e.localState.id)
	}
	return out
}

func (e *ResourceEdge) snapshot() domain.RelationshipData {
	rd := domain.RelationshipData{Links: copyLinks(e.links), Meta: copyMeta(e.meta)}
	switch v := e.effective(); {
	case v.id != nil:
		rd.Data = domain.One(*v.id)
	case e.hasReceivedData:
		rd.Data = domain.Null()
	}
	return rd
}

func cloneID(id *domain.Identifier) *domain.Identifier {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
