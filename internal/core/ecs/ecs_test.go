package ecs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos struct{ X, Y float64 }
type vel struct{ X, Y float64 }
type tag struct{}
type clock struct{ Ticks int }

func TestEntityPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	b := p.Create()
	assert.Equal(t, uint32(0), a.Index())
	assert.Equal(t, uint32(1), b.Index())
	assert.Equal(t, 2, p.Len())

	require.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Destroy(a), "stale destroy")

	c := p.Create()
	assert.Equal(t, a.Index(), c.Index())
	assert.Equal(t, uint32(1), c.Generation())
	assert.True(t, p.Alive(c))
	assert.False(t, p.Alive(a))
	assert.Equal(t, 2, p.Len())
}

func TestStoreSetGetRemove(t *testing.T) {
	w := NewWorld()
	s := Register[pos](w)
	e1, e2, e3 := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()

	s.Set(e1, &pos{1, 1})
	s.Set(e2, &pos{2, 2})
	s.Set(e3, &pos{3, 3})

	got, ok := s.Get(e2)
	require.True(t, ok)
	assert.Equal(t, pos{2, 2}, *got)

	s.Set(e2, &pos{20, 20})
	got, _ = s.Get(e2)
	assert.Equal(t, pos{20, 20}, *got)
	assert.Equal(t, 3, s.Len())

	s.Remove(e1)
	_, ok = s.Get(e1)
	assert.False(t, ok, "absent lookup is not an error")
	assert.False(t, s.Has(e1))

	var order []EntityID
	s.Each(func(id EntityID, _ *pos) { order = append(order, id) })
	assert.Equal(t, []EntityID{e3, e2}, order, "last element swapped into the hole")

	s.Remove(e1)
	assert.Equal(t, 2, s.Len())
}

func TestJoinsYieldIntersectionOnly(t *testing.T) {
	w := NewWorld()
	ps := Register[pos](w)
	vs := Register[vel](w)
	ts := Register[tag](w)

	var ids []EntityID
	for i := 0; i < 6; i++ {
		id := w.CreateEntity()
		ids = append(ids, id)
		ps.Set(id, &pos{X: float64(i)})
		if i%2 == 0 {
			vs.Set(id, &vel{X: 1})
		}
		if i%3 == 0 {
			ts.Set(id, &tag{})
		}
	}

	var two []EntityID
	Each2(ps, vs, func(id EntityID, _ *pos, _ *vel) { two = append(two, id) })
	assert.Equal(t, []EntityID{ids[0], ids[2], ids[4]}, two)

	var three []EntityID
	Each3(ps, vs, ts, func(id EntityID, _ *pos, _ *vel, _ *tag) { three = append(three, id) })
	assert.Equal(t, []EntityID{ids[0]}, three)

	var again []EntityID
	Each2(ps, vs, func(id EntityID, _ *pos, _ *vel) { again = append(again, id) })
	assert.Equal(t, two, again, "join order is stable")
}

func TestDestroyRemovesFromEveryStore(t *testing.T) {
	w := NewWorld()
	ps := Register[pos](w)
	vs := Register[vel](w)
	e := w.CreateEntity()
	ps.Set(e, &pos{})
	vs.Set(e, &vel{})

	w.MarkForDestruction(e)
	assert.True(t, ps.Has(e), "deferred until flush")
	assert.Equal(t, 1, w.FlushDestroyQueue())

	assert.False(t, ps.Has(e))
	assert.False(t, vs.Has(e))
	assert.False(t, w.Alive(e))
	assert.Equal(t, 0, w.FlushDestroyQueue())
}

func TestUnregisteredKindPanics(t *testing.T) {
	w := NewWorld()
	assert.Panics(t, func() { Components[pos](w) })
	assert.Panics(t, func() { ReadResource[clock](w) })
	assert.Panics(t, func() { w.Acquire("sys", Access{}.Read(ComponentKind[vel]())) })

	Register[pos](w)
	assert.Panics(t, func() { Register[pos](w) })
	InsertResource(w, clock{})
	assert.Panics(t, func() { InsertResource(w, clock{}) })
}

func TestCheckReportsUnregisteredKinds(t *testing.T) {
	w := NewWorld()
	Register[pos](w)
	assert.NoError(t, w.Check(Access{}.Read(ComponentKind[pos]())))
	assert.Error(t, w.Check(Access{}.Write(ResourceKind[clock]())))
}

func TestBorrowEnforcesDeclaredAccess(t *testing.T) {
	w := NewWorld()
	Register[pos](w)
	Register[vel](w)
	InsertResource(w, clock{Ticks: 3})

	b := w.Acquire("reader", Access{}.Read(ComponentKind[pos](), ResourceKind[clock]()))
	assert.NotNil(t, Read[pos](b))
	assert.Equal(t, 3, Fetch[clock](b).Ticks)
	assert.Panics(t, func() { Write[pos](b) })
	assert.Panics(t, func() { Read[vel](b) })
	assert.Panics(t, func() { FetchMut[clock](b) })
	b.Release()

	b = w.Acquire("writer", Access{}.Write(ResourceKind[clock]()))
	FetchMut[clock](b).Ticks++
	b.Release()
	assert.Equal(t, 4, ReadResource[clock](w).Ticks)

	UpdateResource(w, func(c *clock) { c.Ticks = 10 })
	assert.Equal(t, 10, ReadResource[clock](w).Ticks)
}

func TestWriterWaitsForReaders(t *testing.T) {
	w := NewWorld()
	InsertResource(w, clock{})
	read := Access{}.Read(ResourceKind[clock]())

	r1 := w.Acquire("r1", read)
	r2 := w.Acquire("r2", read)

	acquired := make(chan struct{})
	go func() {
		wb := w.Acquire("w", Access{}.Write(ResourceKind[clock]()))
		FetchMut[clock](wb).Ticks = 1
		wb.Release()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while readers held the slot")
	case <-time.After(20 * time.Millisecond):
	}
	r1.Release()
	r2.Release()
	<-acquired
	assert.Equal(t, 1, ReadResource[clock](w).Ticks)
}

func TestConcurrentBorrowsDoNotDeadlock(t *testing.T) {
	w := NewWorld()
	Register[pos](w)
	Register[vel](w)
	a := Access{}.Write(ComponentKind[pos]()).Read(ComponentKind[vel]())
	b := Access{}.Write(ComponentKind[vel]()).Read(ComponentKind[pos]())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); w.Acquire("a", a).Release() }()
		go func() { defer wg.Done(); w.Acquire("b", b).Release() }()
	}
	wg.Wait()
}

func TestAccessConflicts(t *testing.T) {
	p, v := ComponentKind[pos](), ComponentKind[vel]()
	c := ResourceKind[clock]()

	cases := []struct {
		name string
		a, b Access
		want bool
	}{
		{"disjoint", Access{}.Write(p), Access{}.Write(v), false},
		{"shared readers", Access{}.Read(p, c), Access{}.Read(p, c), false},
		{"write vs read", Access{}.Write(p), Access{}.Read(p), true},
		{"read vs write", Access{}.Read(c), Access{}.Write(c), true},
		{"write vs write", Access{}.Write(v), Access{}.Write(v), true},
		{"exclusive", Exclusive(), Access{}, true},
		{"component vs resource of same type", Access{}.Write(ComponentKind[clock]()), Access{}.Read(c), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Conflicts(tc.b))
			assert.Equal(t, tc.want, tc.b.Conflicts(tc.a))
		})
	}
}
