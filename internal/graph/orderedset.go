package graph

import "relgraph/internal/domain"

// orderedSet is an insertion-ordered set of identifiers. Removal is O(n);
// relationship collections are small and ordering is observable.
type orderedSet struct {
	items []domain.Identifier
	index map[domain.Identifier]struct{}
}

func newOrderedSet(ids ...domain.Identifier) *orderedSet {
	s := &orderedSet{index: make(map[domain.Identifier]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *orderedSet) has(id domain.Identifier) bool {
	_, ok := s.index[id]
	return ok
}

func (s *orderedSet) add(id domain.Identifier) bool {
	if s.has(id) {
		return false
	}
	s.index[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

func (s *orderedSet) remove(id domain.Identifier) bool {
	if !s.has(id) {
		return false
	}
	delete(s.index, id)
	for i, item := range s.items {
		if item == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

func (s *orderedSet) len() int { return len(s.items) }

func (s *orderedSet) slice() []domain.Identifier {
	out := make([]domain.Identifier, len(s.items))
	copy(out, s.items)
	return out
}
