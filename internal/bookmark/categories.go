package bookmark

import "slices"

// categorySet is a reference counted set of category names kept sorted with
// compareCategory. A name is listed while at least one bookmark uses it.
type categorySet struct {
	counts map[string]int
	sorted []string
}

func newCategorySet() categorySet {
	return categorySet{counts: make(map[string]int)}
}

// add counts one more use of name. It reports whether name was new, which
// means the sorted listing changed.
func (s *categorySet) add(name string) bool {
	s.counts[name]++
	if s.counts[name] > 1 {
		return false
	}
	i, found := slices.BinarySearchFunc(s.sorted, name, compareCategory)
	if found {
		return false
	}
	s.sorted = slices.Insert(s.sorted, i, name)
	return true
}

// remove drops one use of name. It reports whether the last use went away
// and name left the sorted listing.
func (s *categorySet) remove(name string) bool {
	count, ok := s.counts[name]
	if !ok {
		return false
	}
	if count > 1 {
		s.counts[name] = count - 1
		return false
	}
	delete(s.counts, name)
	i, found := slices.BinarySearchFunc(s.sorted, name, compareCategory)
	if !found {
		return false
	}
	s.sorted = slices.Delete(s.sorted, i, i+1)
	return true
}

func (s *categorySet) count(name string) int {
	return s.counts[name]
}

func (s *categorySet) names() []string {
	return s.sorted
}
