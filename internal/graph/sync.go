package graph

import (
	"fmt"

	"relgraph/internal/domain"
	"relgraph/internal/logger"
)

// syncOp is a deferred reciprocal update: owner.field must (un)link related in
// the given layer because related's inverse edge just did the same.
type syncOp struct {
	layer   layer
	link    bool
	owner   domain.Identifier
	field   string
	related domain.Identifier
}

func (g *Graph) enqueue(op syncOp) {
	g.queue = append(g.queue, op)
}

// link makes related a member of e in layer l. A to-one edge moves straight
// from its previous value to related, so a pending local value is only ever
// compared against the final one; the previous value's reciprocal is queued
// to let go. With reciprocal set the inverse side is queued to follow.
func (g *Graph) link(l layer, e Edge, related domain.Identifier, reciprocal bool) {
	if e.contains(l, related) {
		return
	}
	g.touch(e)
	if re, ok := e.(*ResourceEdge); ok {
		if prev := re.value(l); prev != nil && *prev != related && e.Definition().tracksReciprocal() {
			g.enqueue(syncOp{layer: l, link: false, owner: *prev, field: e.Definition().InverseKey, related: e.Identifier()})
		}
	}
	e.insert(l, related)
	if reciprocal && e.Definition().tracksReciprocal() {
		g.enqueue(syncOp{layer: l, link: true, owner: related, field: e.Definition().InverseKey, related: e.Identifier()})
	}
}

// unlink removes related from e in layer l
func (g *Graph) unlink(l layer, e Edge, related domain.Identifier, reciprocal bool) {
	if !e.contains(l, related) {
		return
	}
	g.touch(e)
	e.delete(l, related)
	if reciprocal && e.Definition().tracksReciprocal() {
		g.enqueue(syncOp{layer: l, link: false, owner: related, field: e.Definition().InverseKey, related: e.Identifier()})
	}
}

// apply performs a queued reciprocal update. The mirrored change is not
// mirrored back; cascades it causes on a to-one edge are.
func (g *Graph) apply(op syncOp) {
	e, err := g.edgeFor(op.owner, op.field)
	if err != nil {
		g.violation(op.owner, op.field, fmt.Sprintf("reciprocal of %s unavailable: %v", op.related, err))
		return
	}
	g.assertDual(e, op)

	if op.link {
		g.link(op.layer, e, op.related, false)
	} else {
		g.unlink(op.layer, e, op.related, false)
	}
	if op.layer == remoteLayer {
		g.align(e, op)
	}
}

// align restores effective symmetry after a remote change collided with local
// intent on one side. After a remote link the side that still excludes the
// pair wins; after a remote unlink the side that still includes it wins.
func (g *Graph) align(e Edge, op syncOp) {
	origin := g.peek(op.related, e.Definition().InverseKey)
	if origin == nil {
		return
	}
	mine := e.contains(localLayer, op.related)
	theirs := origin.contains(localLayer, op.owner)
	if mine == theirs {
		return
	}
	switch {
	case op.link && mine:
		g.unlink(localLayer, e, op.related, false)
	case op.link:
		g.unlink(localLayer, origin, op.owner, false)
	case !mine:
		g.link(localLayer, e, op.related, false)
	default:
		g.link(localLayer, origin, op.owner, false)
	}
}

// assertDual checks that e really is the inverse of the edge that queued op
func (g *Graph) assertDual(e Edge, op syncOp) {
	def := e.Definition()
	if !def.HasInverse {
		g.violation(op.owner, op.field, fmt.Sprintf("reciprocal of %s declares no inverse", op.related))
		return
	}
	origin := g.peek(op.related, def.InverseKey)
	if origin == nil {
		return
	}
	odef := origin.Definition()
	if odef.InverseKey != def.Key {
		g.violation(op.owner, op.field, fmt.Sprintf("%s.%s names %q as inverse", odef.Type, odef.Key, odef.InverseKey))
		return
	}
	if odef.InverseKind != "" && odef.InverseKind != def.Kind {
		g.violation(op.owner, op.field, fmt.Sprintf("cardinality mismatch: %s.%s expects %s, found %s",
			odef.Type, odef.Key, odef.InverseKind, def.Kind))
	}
}

// violation panics in debug mode and otherwise logs and carries on
func (g *Graph) violation(id domain.Identifier, field, detail string) {
	err := &InvariantViolationError{Identifier: id, Field: field, Detail: detail}
	if g.debug {
		panic(err)
	}
	g.log.Warn("continuing after invariant violation", logger.Error(err))
}
