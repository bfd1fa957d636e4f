package ecs

import "fmt"

// Registry tracks all component stores by kind and supports bulk cleanup on
// entity destroy.
type Registry struct {
	stores []Removable
	byKind map[Kind]column
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
		byKind: make(map[Kind]column, 16),
	}
}

// register adds a component store to the registry. Registering the same
// kind twice is a configuration error.
func (r *Registry) register(c column, s Removable) {
	if _, ok := r.byKind[c.kind()]; ok {
		panic(fmt.Sprintf("ecs: component %s registered twice", c.kind()))
	}
	r.byKind[c.kind()] = c
	r.stores = append(r.stores, s)
}

func (r *Registry) lookup(k Kind) (column, bool) {
	c, ok := r.byKind[k]
	return c, ok
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

// Len returns the number of registered component kinds.
func (r *Registry) Len() int { return len(r.stores) }
