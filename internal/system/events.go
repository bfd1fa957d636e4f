package system

import (
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/core/event"
	coresys "github.com/graveyard/engine/internal/core/system"
)

// EventSystem delivers the events emitted last frame. Handlers must only
// touch state they guard themselves. Phase 0 (Input).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventSystem) Access() ecs.Access { return ecs.Access{} }

func (s *EventSystem) Run(_ *ecs.Borrow) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}
