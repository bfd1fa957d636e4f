package system

import (
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/input"
	"github.com/graveyard/engine/internal/resource"
)

// InputSystem drains captured device events into the PlayerInput resource.
// Phase 0 (Input).
type InputSystem struct {
	queue *input.Queue
}

func NewInputSystem(queue *input.Queue) *InputSystem {
	return &InputSystem{queue: queue}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Access() ecs.Access {
	return ecs.Access{}.Write(ecs.ResourceKind[resource.PlayerInput]())
}

func (s *InputSystem) Run(b *ecs.Borrow) error {
	in := ecs.FetchMut[resource.PlayerInput](b)
	s.queue.Drain(func(ev input.Event) { input.Apply(in, ev) })
	return nil
}
