package ecs

import (
	"reflect"
	"slices"
)

// Kind identifies one lockable column of the world: either a component
// store or a resource slot.
type Kind struct {
	typ      reflect.Type
	resource bool
}

func ComponentKind[T any]() Kind { return Kind{typ: reflect.TypeFor[T]()} }
func ResourceKind[T any]() Kind  { return Kind{typ: reflect.TypeFor[T](), resource: true} }

func (k Kind) IsResource() bool { return k.resource }

func (k Kind) String() string {
	if k.typ == nil {
		return "<nil>"
	}
	if k.resource {
		return "res:" + k.typ.String()
	}
	return k.typ.String()
}

// Access declares the kinds a system touches during one invocation.
// A kind declared for write is implicitly readable.
type Access struct {
	reads     []Kind
	writes    []Kind
	exclusive bool
}

// Exclusive returns an access that conflicts with every other system and
// locks every column of the world.
func Exclusive() Access { return Access{exclusive: true} }

func (a Access) Read(kinds ...Kind) Access {
	a.reads = append(slices.Clip(a.reads), kinds...)
	return a
}

func (a Access) Write(kinds ...Kind) Access {
	a.writes = append(slices.Clip(a.writes), kinds...)
	return a
}

func (a Access) IsExclusive() bool { return a.exclusive }

// CanRead reports whether k was declared for read or write.
func (a Access) CanRead(k Kind) bool {
	return a.exclusive || slices.Contains(a.reads, k) || slices.Contains(a.writes, k)
}

func (a Access) CanWrite(k Kind) bool {
	return a.exclusive || slices.Contains(a.writes, k)
}

// Kinds lists every declared kind once, writes taking precedence.
func (a Access) Kinds() (kinds []Kind, write []bool) {
	for _, k := range a.writes {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
			write = append(write, true)
		}
	}
	for _, k := range a.reads {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
			write = append(write, false)
		}
	}
	return kinds, write
}

// Conflicts reports whether a and o may not run at the same time: either
// writes a kind the other reads or writes.
func (a Access) Conflicts(o Access) bool {
	if a.exclusive || o.exclusive {
		return true
	}
	for _, k := range a.writes {
		if o.CanRead(k) {
			return true
		}
	}
	for _, k := range o.writes {
		if a.CanRead(k) {
			return true
		}
	}
	return false
}
