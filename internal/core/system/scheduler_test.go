package system

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type posA struct{ V float64 }
type posB struct{ V float64 }
type shared struct{ N int }

// trace records system completions in order.
type trace struct {
	mu    sync.Mutex
	names []string
}

func (t *trace) add(name string) {
	t.mu.Lock()
	t.names = append(t.names, name)
	t.mu.Unlock()
}

func (t *trace) index(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

func traced(tr *trace, name string, p Phase, a ecs.Access) Func {
	return Func{P: p, A: a, F: func(*ecs.Borrow) error {
		tr.add(name)
		return nil
	}}
}

func newWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.Register[posA](w)
	ecs.Register[posB](w)
	ecs.InsertResource(w, shared{})
	return w
}

func TestBuildRejectsCycle(t *testing.T) {
	nop := Func{P: PhaseUpdate, F: func(*ecs.Borrow) error { t.Fatal("must not run"); return nil }}
	_, err := NewBuilder(zap.NewNop()).
		Add(nop, "a", "b").
		Add(nop, "b", "a").
		Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDependencyCycle))
	assert.Contains(t, err.Error(), "a, b")
}

func TestBuildRejectsBadGraphs(t *testing.T) {
	nop := Func{P: PhaseUpdate, F: func(*ecs.Borrow) error { return nil }}
	early := Func{P: PhaseInput, F: nop.F}

	cases := []struct {
		name string
		b    *Builder
		want error
	}{
		{"unknown", NewBuilder(zap.NewNop()).Add(nop, "a", "missing"), ErrUnknownDependency},
		{"duplicate", NewBuilder(zap.NewNop()).Add(nop, "a").Add(nop, "a"), ErrDuplicateSystem},
		{"self", NewBuilder(zap.NewNop()).Add(nop, "a", "a"), ErrDependencyCycle},
		{"later phase", NewBuilder(zap.NewNop()).Add(nop, "late").Add(early, "early", "late"), ErrPhaseOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.b.Build()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDependenciesAreObserved(t *testing.T) {
	w := newWorld()
	tr := &trace{}
	readA := ecs.Access{}.Read(ecs.ComponentKind[posA]())
	s, err := NewBuilder(zap.NewNop()).
		Add(traced(tr, "position", PhaseUpdate, ecs.Access{}.Write(ecs.ComponentKind[posB]())), "position", "moving", "has_aabb").
		Add(traced(tr, "moving", PhaseUpdate, readA), "moving").
		Add(traced(tr, "has_aabb", PhaseUpdate, readA), "has_aabb").
		Add(traced(tr, "input", PhaseInput, ecs.Access{}), "input").
		Workers(4).
		Build()
	require.NoError(t, err)
	require.NoError(t, s.Validate(w))

	for i := 0; i < 200; i++ {
		tr.names = nil
		require.NoError(t, s.Dispatch(context.Background(), w))
		require.Len(t, tr.names, 4)
		assert.Equal(t, "input", tr.names[0], "earlier phase first")
		assert.Greater(t, tr.index("position"), tr.index("moving"))
		assert.Greater(t, tr.index("position"), tr.index("has_aabb"))
	}
	assert.Equal(t, []string{"moving", "has_aabb", "position"}, s.Order()[PhaseUpdate])
}

func TestConflictingSystemsAreOrderedByRegistration(t *testing.T) {
	w := newWorld()
	tr := &trace{}
	write := ecs.Access{}.Write(ecs.ResourceKind[shared]())
	read := ecs.Access{}.Read(ecs.ResourceKind[shared]())
	s, err := NewBuilder(zap.NewNop()).
		Add(traced(tr, "writer", PhaseUpdate, write), "writer").
		Add(traced(tr, "reader", PhaseUpdate, read), "reader").
		Add(traced(tr, "other", PhaseUpdate, ecs.Access{}), "other").
		Build()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		tr.names = nil
		require.NoError(t, s.Dispatch(context.Background(), w))
		assert.Less(t, tr.index("writer"), tr.index("reader"))
	}
}

func TestConflictingSystemsNeverOverlap(t *testing.T) {
	w := newWorld()
	var active, overlaps int32
	body := func(*ecs.Borrow) error {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	}
	write := ecs.Access{}.Write(ecs.ComponentKind[posA]())
	read := ecs.Access{}.Read(ecs.ComponentKind[posA]())
	b := NewBuilder(zap.NewNop()).Workers(8)
	b.Add(Func{P: PhaseUpdate, A: write, F: body}, "w1")
	b.Add(Func{P: PhaseUpdate, A: read, F: body}, "r1")
	b.Add(Func{P: PhaseUpdate, A: write, F: body}, "w2")
	s, err := b.Build()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Dispatch(context.Background(), w))
	}
	assert.Zero(t, atomic.LoadInt32(&overlaps))
}

func TestIndependentSystemsRunConcurrently(t *testing.T) {
	w := newWorld()
	aStarted := make(chan struct{})
	bStarted := make(chan struct{})
	wait := func(own, other chan struct{}) func(*ecs.Borrow) error {
		return func(*ecs.Borrow) error {
			close(own)
			select {
			case <-other:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("peer never started")
			}
		}
	}
	s, err := NewBuilder(zap.NewNop()).Workers(2).
		Add(Func{P: PhaseUpdate, A: ecs.Access{}.Write(ecs.ComponentKind[posA]()), F: wait(aStarted, bStarted)}, "a").
		Add(Func{P: PhaseUpdate, A: ecs.Access{}.Write(ecs.ComponentKind[posB]()), F: wait(bStarted, aStarted)}, "b").
		Build()
	require.NoError(t, err)
	assert.NoError(t, s.Dispatch(context.Background(), w))
}

func TestErrorStopsFrame(t *testing.T) {
	w := newWorld()
	tr := &trace{}
	boom := errors.New("backend lost")
	s, err := NewBuilder(zap.NewNop()).
		Add(Func{P: PhaseOutput, F: func(*ecs.Borrow) error { return boom }}, "render").
		Add(traced(tr, "animation", PhaseOutput, ecs.Access{}), "animation", "render").
		Add(traced(tr, "cleanup", PhaseCleanup, ecs.Access{}), "cleanup").
		Build()
	require.NoError(t, err)

	err = s.Dispatch(context.Background(), w)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `system "render"`)
	assert.Empty(t, tr.names, "dependents and later phases do not run")
}

func TestDispatchHonoursCancelledContext(t *testing.T) {
	w := newWorld()
	tr := &trace{}
	s, err := NewBuilder(zap.NewNop()).Add(traced(tr, "a", PhaseUpdate, ecs.Access{}), "a").Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Dispatch(ctx, w), context.Canceled)
	assert.Empty(t, tr.names)
}

func TestValidateReportsUnregisteredKinds(t *testing.T) {
	type unknown struct{}
	s, err := NewBuilder(zap.NewNop()).
		Add(Func{P: PhaseUpdate, A: ecs.Access{}.Read(ecs.ComponentKind[unknown]())}, "a").
		Build()
	require.NoError(t, err)
	assert.Error(t, s.Validate(newWorld()))
}

// Two systems with no shared kind, run concurrently for many frames, must
// end in the same state as running them one after the other in either order.
func TestIndependentSystemsMatchSequentialResult(t *testing.T) {
	const frames = 10000
	const perSet = 16

	setup := func() (*ecs.World, []ecs.EntityID, []ecs.EntityID) {
		w := newWorld()
		as, bs := ecs.Components[posA](w), ecs.Components[posB](w)
		var ea, eb []ecs.EntityID
		for i := 0; i < perSet; i++ {
			a := w.CreateEntity()
			as.Set(a, &posA{V: float64(i)})
			ea = append(ea, a)
			b := w.CreateEntity()
			bs.Set(b, &posB{V: float64(i)})
			eb = append(eb, b)
		}
		return w, ea, eb
	}
	stepA := func(b *ecs.Borrow) error {
		ecs.Write[posA](b).Each(func(_ ecs.EntityID, p *posA) { p.V = p.V*0.5 + 1 })
		return nil
	}
	stepB := func(b *ecs.Borrow) error {
		ecs.Write[posB](b).Each(func(_ ecs.EntityID, p *posB) { p.V += 2 })
		return nil
	}
	sysA := Func{P: PhaseUpdate, A: ecs.Access{}.Write(ecs.ComponentKind[posA]()), F: stepA}
	sysB := Func{P: PhaseUpdate, A: ecs.Access{}.Write(ecs.ComponentKind[posB]()), F: stepB}

	snapshot := func(w *ecs.World, ea, eb []ecs.EntityID) []float64 {
		var out []float64
		for _, id := range ea {
			p, _ := ecs.Components[posA](w).Get(id)
			out = append(out, p.V)
		}
		for _, id := range eb {
			p, _ := ecs.Components[posB](w).Get(id)
			out = append(out, p.V)
		}
		return out
	}

	run := func(s *Scheduler) []float64 {
		w, ea, eb := setup()
		for i := 0; i < frames; i++ {
			require.NoError(t, s.Dispatch(context.Background(), w))
		}
		return snapshot(w, ea, eb)
	}

	concurrent, err := NewBuilder(zap.NewNop()).Workers(2).Add(sysA, "a").Add(sysB, "b").Build()
	require.NoError(t, err)
	abOrder, err := NewBuilder(zap.NewNop()).Add(sysA, "a").Add(sysB, "b", "a").Build()
	require.NoError(t, err)
	baOrder, err := NewBuilder(zap.NewNop()).Add(sysB, "b").Add(sysA, "a", "b").Build()
	require.NoError(t, err)

	got := run(concurrent)
	assert.Equal(t, run(abOrder), got)
	assert.Equal(t, run(baOrder), got)
}
