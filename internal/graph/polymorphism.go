package graph

import (
	"fmt"

	"relgraph/internal/domain"
)

// validateCandidates runs the polymorphic checks for every identifier about
// to be related through e, in both directions
func (g *Graph) validateCandidates(e Edge, candidates []domain.Identifier) error {
	owner, def := e.Identifier(), e.Definition()
	schema := g.caps.Schema()
	for _, candidate := range candidates {
		if candidate.Type != def.RelatedType && !schema.HasType(candidate.Type) {
			return schemaErrorf(candidate.Type, def.InverseKey, "type of related %s is not defined", candidate)
		}
		if err := g.assertPolymorphicType(owner, def, candidate); err != nil {
			return err
		}
		if !def.HasInverse || def.InverseIsImplicit {
			continue
		}
		inverse, err := g.resolver.Resolve(candidate.Type, def.InverseKey)
		if err != nil {
			return fmt.Errorf("resolve inverse of %s.%s for %s: %w", def.Type, def.Key, candidate, err)
		}
		if err := g.assertPolymorphicType(candidate, inverse, owner); err != nil {
			return err
		}
	}
	return nil
}

// assertPolymorphicType checks that candidate satisfies the abstract related
// type of a polymorphic edge. A concrete type qualifies when its inverse field
// declares the abstract type through as.
func (g *Graph) assertPolymorphicType(owner domain.Identifier, def *EdgeDefinition, candidate domain.Identifier) error {
	if !def.IsPolymorphic || !def.HasInverse || def.InverseIsImplicit {
		return nil
	}
	if candidate.Type == def.RelatedType {
		return nil
	}
	if rels, ok := g.caps.Schema().Relationships(candidate.Type); ok {
		if inv, ok := rels[def.InverseKey]; ok && inv.Satisfies(candidate.Type, def.RelatedType) {
			return nil
		}
	}
	return &PolymorphicTypeViolationError{
		Owner:    owner,
		Field:    def.Key,
		Expected: def.RelatedType,
		Actual:   candidate.Type,
		Related:  candidate,
	}
}
