package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// slot holds the single instance of one resource type.
type slot struct {
	mu    sync.RWMutex
	k     Kind
	order int
	value any // *T
}

func (s *slot) kind() Kind        { return s.k }
func (s *slot) rw() *sync.RWMutex { return &s.mu }
func (s *slot) seq() int          { return s.order }

// Resources is the typed singleton store. Each resource type has at most one
// instance, owned here for the lifetime of the world.
type Resources struct {
	slots map[reflect.Type]*slot
}

func newResources() *Resources {
	return &Resources{slots: make(map[reflect.Type]*slot, 8)}
}

func (r *Resources) lookup(k Kind) (*slot, bool) {
	s, ok := r.slots[k.typ]
	return s, ok
}

// InsertResource registers the single instance of T. Inserting a second
// instance of the same type is a configuration error.
func InsertResource[T any](w *World, v T) {
	k := ResourceKind[T]()
	if _, ok := w.resources.slots[k.typ]; ok {
		panic(fmt.Sprintf("ecs: resource %s already exists", k))
	}
	p := new(T)
	*p = v
	w.resources.slots[k.typ] = &slot{k: k, order: w.nextOrder(), value: p}
}

// HasResource reports whether T was inserted.
func HasResource[T any](w *World) bool {
	_, ok := w.resources.slots[reflect.TypeFor[T]()]
	return ok
}

// ReadResource returns a copy of T taken under the slot's read lock. For use
// outside the scheduler; systems use Fetch.
func ReadResource[T any](w *World) T {
	s := mustSlot[T](w)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.value.(*T)
}

// UpdateResource runs fn with exclusive access to T. For use outside the
// scheduler, e.g. by the input capture goroutine.
func UpdateResource[T any](w *World, fn func(*T)) {
	s := mustSlot[T](w)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.value.(*T))
}

func mustSlot[T any](w *World) *slot {
	s, ok := w.resources.slots[reflect.TypeFor[T]()]
	if !ok {
		panic(fmt.Sprintf("ecs: resource %s not registered", ResourceKind[T]()))
	}
	return s
}
