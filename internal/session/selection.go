package session

// SelectionSet is a toggle-collection of chosen entity ids, used while
// picking task assignees. Membership is unordered; rendering order
// comes from the paginated list the set is toggled against.
type SelectionSet struct {
	ids map[int64]struct{}
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[int64]struct{})}
}

// Toggle flips the membership of id and reports whether it is selected
// afterwards. Toggling twice restores the original state.
func (s *SelectionSet) Toggle(id int64) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *SelectionSet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in unspecified order.
func (s *SelectionSet) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
