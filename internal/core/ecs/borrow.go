package ecs

import (
	"fmt"
	"sort"
	"sync"
)

// Borrow is the per-invocation view of the world handed to a system. It
// holds the locks for every kind the system declared until Release.
type Borrow struct {
	w      *World
	access Access
	name   string
	held   []heldLock
}

type heldLock struct {
	mu    *sync.RWMutex
	write bool
}

// Acquire locks every kind declared in a, always in registration order so
// two borrows can never deadlock. Unregistered kinds panic.
func (w *World) Acquire(name string, a Access) *Borrow {
	b := &Borrow{w: w, access: a, name: name}

	type want struct {
		c     column
		write bool
	}
	var wants []want
	if a.exclusive {
		for _, c := range w.allColumns() {
			wants = append(wants, want{c, true})
		}
	} else {
		kinds, write := a.Kinds()
		for i, k := range kinds {
			c, ok := w.column(k)
			if !ok {
				panic(fmt.Sprintf("ecs: system %q declares unregistered kind %s", name, k))
			}
			wants = append(wants, want{c, write[i]})
		}
		sort.Slice(wants, func(i, j int) bool { return wants[i].c.seq() < wants[j].c.seq() })
	}

	b.held = make([]heldLock, 0, len(wants))
	for _, x := range wants {
		mu := x.c.rw()
		if x.write {
			mu.Lock()
		} else {
			mu.RLock()
		}
		b.held = append(b.held, heldLock{mu: mu, write: x.write})
	}
	return b
}

// Release drops every lock in reverse acquisition order.
func (b *Borrow) Release() {
	for i := len(b.held) - 1; i >= 0; i-- {
		if b.held[i].write {
			b.held[i].mu.Unlock()
		} else {
			b.held[i].mu.RUnlock()
		}
	}
	b.held = nil
}

// World exposes the underlying world for operations that are not
// kind-scoped, such as MarkForDestruction.
func (b *Borrow) World() *World { return b.w }

// Name is the system name the borrow was acquired for.
func (b *Borrow) Name() string { return b.name }

// Read returns the store of T for reading. T must be declared in the
// system's access.
func Read[T any](b *Borrow) *Store[T] {
	k := ComponentKind[T]()
	if !b.access.CanRead(k) {
		panic(fmt.Sprintf("ecs: system %q reads undeclared %s", b.name, k))
	}
	return Components[T](b.w)
}

// Write returns the store of T for mutation. T must be declared for write.
func Write[T any](b *Borrow) *Store[T] {
	k := ComponentKind[T]()
	if !b.access.CanWrite(k) {
		panic(fmt.Sprintf("ecs: system %q writes undeclared %s", b.name, k))
	}
	return Components[T](b.w)
}

// Fetch returns a read-only copy of resource T.
func Fetch[T any](b *Borrow) T {
	k := ResourceKind[T]()
	if !b.access.CanRead(k) {
		panic(fmt.Sprintf("ecs: system %q reads undeclared %s", b.name, k))
	}
	return *mustSlot[T](b.w).value.(*T)
}

// FetchMut returns exclusive mutable access to resource T.
func FetchMut[T any](b *Borrow) *T {
	k := ResourceKind[T]()
	if !b.access.CanWrite(k) {
		panic(fmt.Sprintf("ecs: system %q writes undeclared %s", b.name, k))
	}
	return mustSlot[T](b.w).value.(*T)
}
