package system

import (
	"sync"

	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/core/event"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/resource"
	"github.com/graveyard/engine/internal/scripting"
)

// PlayerSystem turns the input intents into velocities for player
// controlled entities and keeps their facing. An entity counts as grounded
// when a floor contact was delivered this frame. Phase 1 (PreUpdate).
type PlayerSystem struct {
	mover scripting.Mover

	mu       sync.Mutex
	grounded map[ecs.EntityID]bool
}

func NewPlayerSystem(mover scripting.Mover, bus *event.Bus) *PlayerSystem {
	s := &PlayerSystem{mover: mover, grounded: make(map[ecs.EntityID]bool)}
	event.Subscribe(bus, s.onContact)
	return s
}

func (s *PlayerSystem) onContact(c event.Contact) {
	if !c.Grounded() {
		return
	}
	s.mu.Lock()
	s.grounded[c.Entity] = true
	s.mu.Unlock()
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *PlayerSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(
			ecs.ComponentKind[component.PlayerControlled](),
			ecs.ResourceKind[resource.DeltaTime](),
		).
		Write(
			ecs.ComponentKind[component.MovingObject](),
			ecs.ComponentKind[component.Directional](),
			ecs.ResourceKind[resource.PlayerInput](),
		)
}

func (s *PlayerSystem) Run(b *ecs.Borrow) error {
	players := ecs.Read[component.PlayerControlled](b)
	moving := ecs.Write[component.MovingObject](b)
	facing := ecs.Write[component.Directional](b)
	in := ecs.FetchMut[resource.PlayerInput](b)
	dt := ecs.Fetch[resource.DeltaTime](b).Seconds()

	s.mu.Lock()
	grounded := s.grounded
	s.grounded = make(map[ecs.EntityID]bool, len(grounded))
	s.mu.Unlock()

	ecs.Each2(players, moving, func(id ecs.EntityID, _ *component.PlayerControlled, m *component.MovingObject) {
		res := s.mover.PlayerVelocity(scripting.MoveContext{
			Left:     in.Left,
			Right:    in.Right,
			Jump:     in.Jump,
			Slide:    in.Slide,
			Grounded: grounded[id],
			Velocity: m.Velocity,
			DT:       dt,
		})
		m.Velocity = res.Velocity

		if d, ok := facing.Get(id); ok {
			switch {
			case res.Velocity.X < 0:
				*d = component.Left
			case res.Velocity.X > 0:
				*d = component.Right
			}
		}
	})

	// A press is used up by this frame whether or not it led to a jump.
	in.Jump = false
	return nil
}
