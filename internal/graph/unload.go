package graph

import "relgraph/internal/domain"

// Unload drops every edge owned by id and removes id from the reciprocal of
// each. Definitions stay cached.
func (g *Graph) Unload(id domain.Identifier) {
	_ = g.run(func() error {
		for _, e := range g.edgesOf(id) {
			def := e.Definition()
			if def.HasInverse {
				for _, other := range e.related() {
					g.purgeFrom(other, def.InverseKey, id)
				}
			}
			e.base().destroyed = true
		}
		delete(g.edges, id)
		g.dropQueued(id)
		g.log.Debug("identifier unloaded", "identifier", id.String())
		return nil
	})
}

func (g *Graph) purgeFrom(owner domain.Identifier, field string, id domain.Identifier) {
	e := g.peek(owner, field)
	if e == nil {
		return
	}
	g.touch(e)
	e.purge(id)
}

// dropQueued discards pending propagation that involves id. An op still
// waiting to mirror onto id means the origin edge holds id already, so that
// reference is purged directly.
func (g *Graph) dropQueued(id domain.Identifier) {
	kept := g.queue[:0]
	for _, op := range g.queue {
		switch {
		case op.owner == id:
			if def, err := g.resolver.Resolve(op.owner.Type, op.field); err == nil {
				g.purgeFrom(op.related, def.InverseKey, id)
			}
		case op.related == id:
		default:
			kept = append(kept, op)
		}
	}
	g.queue = kept
}
