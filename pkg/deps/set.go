package deps

import "iter"

// Set is an insertion-ordered set of providers keyed by identity. The
// first record inserted for an identity wins. The zero value is ready to
// use.
type Set struct {
	index map[string]int
	items []Provider
}

// NewSet returns a set holding ps.
func NewSet(ps ...Provider) *Set {
	s := &Set{}
	for _, p := range ps {
		s.Insert(p)
	}
	return s
}

// Insert adds p unless a provider with the same identity is present. It
// reports whether p was added.
func (s *Set) Insert(p Provider) bool {
	id := p.Identity()
	if _, ok := s.index[id]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, p)
	return true
}

// Get returns the provider stored under key's identity.
func (s *Set) Get(key string) (Provider, bool) {
	i, ok := s.index[Identity(key)]
	if !ok {
		return Provider{}, false
	}
	return s.items[i], true
}

// Contains reports whether key's identity is present.
func (s *Set) Contains(key string) bool {
	_, ok := s.index[Identity(key)]
	return ok
}

// Len is the number of providers.
func (s *Set) Len() int { return len(s.items) }

// Items returns the providers in insertion order.
func (s *Set) Items() []Provider {
	out := make([]Provider, len(s.items))
	copy(out, s.items)
	return out
}

// All yields the providers in insertion order.
func (s *Set) All() iter.Seq[Provider] {
	return func(yield func(Provider) bool) {
		for _, p := range s.items {
			if !yield(p) {
				return
			}
		}
	}
}
