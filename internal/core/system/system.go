package system

import (
	"github.com/graveyard/engine/internal/core/ecs"
)

// Phase is a barrier-synchronized stage of a frame. Every system of a phase
// completes before any system of the next phase starts.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain captured input, dispatch last frame's events
	PhasePreUpdate               // 1: intent -> velocities
	PhaseUpdate                  // 2: physics
	PhasePostUpdate              // 3: camera
	PhaseOutput                  // 4: render + animation
	PhasePersist                 // 5: checkpoints
	PhaseCleanup                 // 6: destroy queued entities
	phaseCount
)

var phaseNames = [...]string{"input", "pre_update", "update", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "phase(?)"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements. Access declares the
// component kinds and resources Run may touch; the scheduler locks exactly
// those for the duration of Run.
type System interface {
	Phase() Phase
	Access() ecs.Access
	Run(b *ecs.Borrow) error
}

// Func adapts a plain function to System.
type Func struct {
	P Phase
	A ecs.Access
	F func(b *ecs.Borrow) error
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Access() ecs.Access      { return f.A }
func (f Func) Run(b *ecs.Borrow) error { return f.F(b) }
