package ecs

import "sync"

// column is implemented by every component store and resource slot so the
// world can lock them uniformly.
type column interface {
	kind() Kind
	rw() *sync.RWMutex
	seq() int
}

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component column. Values are kept densely in insertion
// order; removal swaps the last element into the hole, so iteration order is
// a pure function of the sequence of Set/Remove calls.
//
// Store methods do not lock. Systems get stores through a Borrow, which
// holds the kind's lock for the whole invocation.
type Store[T any] struct {
	mu    sync.RWMutex
	k     Kind
	order int
	index map[EntityID]int
	ids   []EntityID
	data  []*T
}

func newStore[T any](order int) *Store[T] {
	return &Store[T]{
		k:     ComponentKind[T](),
		order: order,
		index: make(map[EntityID]int, 256),
		ids:   make([]EntityID, 0, 256),
		data:  make([]*T, 0, 256),
	}
}

func (s *Store[T]) kind() Kind        { return s.k }
func (s *Store[T]) rw() *sync.RWMutex { return &s.mu }
func (s *Store[T]) seq() int          { return s.order }

// Set inserts or replaces the component of id.
func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

// Get returns the component of id, or false when id lacks this kind.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.data[i] = s.data[last]
		s.index[s.ids[i]] = i
	}
	s.ids[last] = 0
	s.data[last] = nil
	s.ids = s.ids[:last]
	s.data = s.data[:last]
	delete(s.index, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.ids)
}

// Each visits every component in dense order. fn must not add or remove
// components of this kind.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.data[i])
	}
}
