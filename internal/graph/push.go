package graph

import (
	"fmt"

	"relgraph/internal/domain"
)

// Push applies a remote relationship payload to id.field. Omitted data leaves
// membership untouched while links and meta are still recorded.
func (g *Graph) Push(id domain.Identifier, field string, p domain.Payload) error {
	e, err := g.edgeFor(id, field)
	if err != nil {
		return err
	}
	def := e.Definition()
	if def.IsImplicit() {
		return fmt.Errorf("%w: push to implicit edge %s.%s", ErrUnsupportedOperation, id, field)
	}

	var related []domain.Identifier
	if p.Data.IsPresent() {
		if p.Data.IsMany() && !def.IsCollection() && len(p.Data.List()) > 1 {
			return fmt.Errorf("%w: list of %d identifiers pushed to to-one %s.%s",
				ErrUnsupportedOperation, len(p.Data.List()), id, field)
		}
		if related, err = g.canonicalize(p.Data.List()); err != nil {
			return fmt.Errorf("push %s.%s: %w", id, field, err)
		}
		if err := g.validateCandidates(e, related); err != nil {
			return err
		}
	}

	return g.run(func() error {
		g.touch(e)
		g.pushLinks(e, p)
		if !p.Data.IsPresent() {
			return nil
		}
		e.base().isStale = false
		switch edge := e.(type) {
		case *ResourceEdge:
			g.pushResource(edge, related)
		case *CollectionEdge:
			g.pushCollection(edge, related)
		}
		return nil
	})
}

// canonicalize upgrades payload references through the identity service so
// the graph only ever keys on identifiers it handed out
func (g *Graph) canonicalize(refs []domain.Identifier) ([]domain.Identifier, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	identity := g.caps.Identity()
	out := make([]domain.Identifier, 0, len(refs))
	for _, ref := range refs {
		id, err := identity.GetOrCreate(ref.Ref())
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// pushLinks records links and meta. A related link that changed without data
// means the cached membership is out of date.
func (g *Graph) pushLinks(e Edge, p domain.Payload) {
	b := e.base()
	if p.Links != nil {
		if !p.Data.IsPresent() && b.links.Related() != p.Links.Related() && p.Links.Related() != "" {
			b.isStale = true
		}
		b.links = copyLinks(p.Links)
	}
	if p.Meta != nil {
		b.meta = copyMeta(p.Meta)
	}
}

func (g *Graph) pushResource(e *ResourceEdge, related []domain.Identifier) {
	if len(related) > 0 {
		g.link(remoteLayer, e, related[0], true)
		return
	}
	if prev := e.remoteState.id; prev != nil {
		g.unlink(remoteLayer, e, *prev, true)
		return
	}
	if !e.remoteState.set {
		e.setRemote(nil)
	}
}

// pushCollection replaces the remote membership wholesale and adopts the
// pushed order
func (g *Graph) pushCollection(e *CollectionEdge, related []domain.Identifier) {
	next := newOrderedSet(related...)
	for _, cur := range e.remoteState.slice() {
		if !next.has(cur) {
			g.unlink(remoteLayer, e, cur, true)
		}
	}
	for _, id := range next.items {
		g.link(remoteLayer, e, id, true)
	}
	if !e.hasReceivedData {
		e.hasReceivedData = true
		e.dirty = true
	}
	e.orderRemote(next.items)
}
