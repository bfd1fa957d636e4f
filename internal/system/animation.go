package system

import (
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
	"golang.org/x/sync/errgroup"
)

// minAnimationChunk keeps small populations on one goroutine.
const minAnimationChunk = 256

// AnimationSystem advances every animated entity by one sequence step.
// Entities are split into disjoint chunks advanced in parallel. An
// exhausted sequence leaves the frame where it is; a frame that has left
// the animation's range hides the entity without removing it.
// Phase 4 (Output), after RenderSystem.
type AnimationSystem struct {
	workers int
	batch   []animated
}

type animated struct {
	seq *component.HasAnimationSequence
	r   *component.Renderable
}

func NewAnimationSystem(workers int) *AnimationSystem {
	if workers < 1 {
		workers = 1
	}
	return &AnimationSystem{workers: workers}
}

func (s *AnimationSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *AnimationSystem) Access() ecs.Access {
	return ecs.Access{}.Write(
		ecs.ComponentKind[component.HasAnimationSequence](),
		ecs.ComponentKind[component.Renderable](),
	)
}

func (s *AnimationSystem) Run(b *ecs.Borrow) error {
	s.batch = s.batch[:0]
	ecs.Each2(ecs.Write[component.HasAnimationSequence](b), ecs.Write[component.Renderable](b),
		func(_ ecs.EntityID, seq *component.HasAnimationSequence, r *component.Renderable) {
			if _, ok := r.Kind.(component.Animation); ok && seq.Sequence != nil {
				s.batch = append(s.batch, animated{seq: seq, r: r})
			}
		})

	chunk := max(minAnimationChunk, (len(s.batch)+s.workers-1)/s.workers)
	if len(s.batch) <= chunk {
		advanceAll(s.batch)
		return nil
	}

	var g errgroup.Group
	for lo := 0; lo < len(s.batch); lo += chunk {
		part := s.batch[lo:min(lo+chunk, len(s.batch))]
		g.Go(func() error {
			advanceAll(part)
			return nil
		})
	}
	return g.Wait()
}

func advanceAll(items []animated) {
	for _, it := range items {
		a := it.r.Kind.(component.Animation)
		next, ok := it.seq.Sequence.Next()
		if !ok {
			continue
		}
		a.Frame = next
		it.r.Kind = a
	}
}
