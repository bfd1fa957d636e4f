package system

import (
	"context"
	"fmt"
	"sort"

	"github.com/graveyard/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// Scheduler executes every registered system once per frame: phases run
// in order behind a barrier; inside a phase a system starts once its
// dependencies are done and no running system conflicts with its access.
type Scheduler struct {
	stages  []*stage
	workers int
	log     *zap.Logger
}

type result struct {
	n   *node
	err error
}

// Validate checks that every kind any system declares is registered in w.
// Call it once at startup so configuration errors abort initialization.
func (s *Scheduler) Validate(w *ecs.World) error {
	for _, st := range s.stages {
		for _, n := range st.nodes {
			if err := w.Check(n.sys.Access()); err != nil {
				return fmt.Errorf("system %q: %w", n.name, err)
			}
		}
	}
	return nil
}

// Order lists system names per phase in their resolved order.
func (s *Scheduler) Order() map[Phase][]string {
	out := make(map[Phase][]string, len(s.stages))
	for _, st := range s.stages {
		for _, n := range st.nodes {
			out[st.phase] = append(out[st.phase], n.name)
		}
	}
	return out
}

// Dispatch runs one frame. The first system error stops further launches;
// systems already running are waited for, then the error is returned.
// Cancellation of ctx is observed between launches only.
func (s *Scheduler) Dispatch(ctx context.Context, w *ecs.World) error {
	for _, st := range s.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runStage(ctx, w, st); err != nil {
			return fmt.Errorf("%s phase: %w", st.phase, err)
		}
	}
	return nil
}

func (s *Scheduler) runStage(ctx context.Context, w *ecs.World, st *stage) error {
	if len(st.nodes) == 1 {
		n := st.nodes[0]
		if err := runSystem(w, n); err != nil {
			return fmt.Errorf("system %q: %w", n.name, err)
		}
		return nil
	}

	pending := make([]int, len(st.nodes))
	var ready []int
	for i, n := range st.nodes {
		pending[i] = n.preds
		if n.preds == 0 {
			ready = append(ready, i)
		}
	}

	done := make(chan result, len(st.nodes))
	running := make([]*node, 0, s.workers)
	var firstErr error

	for {
		if firstErr == nil && ctx.Err() == nil {
			for i := 0; i < len(ready) && len(running) < s.workers; {
				n := st.nodes[ready[i]]
				if conflictsWith(n, running) {
					i++
					continue
				}
				ready = append(ready[:i], ready[i+1:]...)
				running = append(running, n)
				go func(n *node) {
					done <- result{n: n, err: runSystem(w, n)}
				}(n)
			}
		}
		if len(running) == 0 {
			break
		}

		r := <-done
		for i, n := range running {
			if n == r.n {
				running = append(running[:i], running[i+1:]...)
				break
			}
		}
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("system %q: %w", r.n.name, r.err)
		}
		for _, m := range r.n.succs {
			pending[m.pos]--
			if pending[m.pos] == 0 {
				ready = append(ready, m.pos)
			}
		}
		sort.Ints(ready)
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func conflictsWith(n *node, running []*node) bool {
	a := n.sys.Access()
	for _, r := range running {
		if a.Conflicts(r.sys.Access()) {
			return true
		}
	}
	return false
}

func runSystem(w *ecs.World, n *node) error {
	b := w.Acquire(n.name, n.sys.Access())
	defer b.Release()
	return n.sys.Run(b)
}
