package ecs

import (
	"fmt"
	"sort"
	"sync"
)

// World is the top-level ECS container. It owns the entity pool, the
// component registry, the resource slots, and a deferred destruction queue
// flushed by the cleanup system each frame.
type World struct {
	pool      *EntityPool
	registry  *Registry
	resources *Resources

	mu           sync.Mutex // guards destroyQueue
	destroyQueue []EntityID
	columns      int
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		resources:    newResources(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) nextOrder() int {
	w.columns++
	return w.columns
}

// Register creates the store for component kind T. Every kind must be
// registered before first use.
func Register[T any](w *World) *Store[T] {
	s := newStore[T](w.nextOrder())
	w.registry.register(s, s)
	return s
}

// Components returns the store of T. An unregistered kind is a programming
// error and panics.
func Components[T any](w *World) *Store[T] {
	k := ComponentKind[T]()
	c, ok := w.registry.lookup(k)
	if !ok {
		panic(fmt.Sprintf("ecs: component %s not registered", k))
	}
	return c.(*Store[T])
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes id from every store immediately. Only safe while no
// system is running; systems use MarkForDestruction.
func (w *World) Destroy(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.mu.Lock()
	w.destroyQueue = append(w.destroyQueue, id)
	w.mu.Unlock()
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by the cleanup system at the end of each frame.
func (w *World) FlushDestroyQueue() int {
	w.mu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.mu.Unlock()

	n := 0
	for _, id := range queue {
		if w.pool.Alive(id) {
			w.Destroy(id)
			n++
		}
	}
	return n
}

// Check verifies that every kind in a is registered.
func (w *World) Check(a Access) error {
	kinds, _ := a.Kinds()
	for _, k := range kinds {
		if _, ok := w.column(k); !ok {
			return fmt.Errorf("kind %s not registered", k)
		}
	}
	return nil
}

func (w *World) column(k Kind) (column, bool) {
	if k.resource {
		return w.resources.lookup(k)
	}
	return w.registry.lookup(k)
}

// allColumns lists every store and slot, in registration order.
func (w *World) allColumns() []column {
	cols := make([]column, 0, len(w.registry.byKind)+len(w.resources.slots))
	for _, c := range w.registry.byKind {
		cols = append(cols, c)
	}
	for _, s := range w.resources.slots {
		cols = append(cols, s)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].seq() < cols[j].seq() })
	return cols
}
