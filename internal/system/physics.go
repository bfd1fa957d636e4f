package system

import (
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/core/event"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/geom"
	"github.com/graveyard/engine/internal/resource"
)

// MovingSystem integrates velocities into positions. Phase 2 (Update).
type MovingSystem struct{}

func NewMovingSystem() *MovingSystem { return &MovingSystem{} }

func (s *MovingSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovingSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(ecs.ComponentKind[component.MovingObject](), ecs.ResourceKind[resource.DeltaTime]()).
		Write(ecs.ComponentKind[component.Position]())
}

func (s *MovingSystem) Run(b *ecs.Borrow) error {
	dt := ecs.Fetch[resource.DeltaTime](b).Seconds()
	ecs.Each2(ecs.Write[component.Position](b), ecs.Read[component.MovingObject](b),
		func(_ ecs.EntityID, p *component.Position, m *component.MovingObject) {
			p.X += m.Velocity.X * dt
			p.Y += m.Velocity.Y * dt
		})
	return nil
}

// AABBSystem derives collision boxes from positions. It runs after
// MovingSystem so the boxes match this frame's positions. Phase 2 (Update).
type AABBSystem struct{}

func NewAABBSystem() *AABBSystem { return &AABBSystem{} }

func (s *AABBSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AABBSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(ecs.ComponentKind[component.Position]()).
		Write(ecs.ComponentKind[component.HasAABB]())
}

func (s *AABBSystem) Run(b *ecs.Borrow) error {
	ecs.Each2(ecs.Read[component.Position](b), ecs.Write[component.HasAABB](b),
		func(_ ecs.EntityID, p *component.Position, a *component.HasAABB) {
			a.Recompute(*p)
		})
	return nil
}

// maxResolvePasses bounds the pushes per entity and frame. Each pass
// removes the deepest remaining overlap.
const maxResolvePasses = 4

// PositionSystem pushes moving boxes out of solid terrain along the axis of
// least penetration, stops the velocity component that drove into the
// tile, and reports every push as a Contact event. Phase 2 (Update).
type PositionSystem struct {
	bus *event.Bus
}

func NewPositionSystem(bus *event.Bus) *PositionSystem {
	return &PositionSystem{bus: bus}
}

func (s *PositionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PositionSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(ecs.ResourceKind[resource.LevelTerrain]()).
		Write(
			ecs.ComponentKind[component.Position](),
			ecs.ComponentKind[component.MovingObject](),
			ecs.ComponentKind[component.HasAABB](),
		)
}

func (s *PositionSystem) Run(b *ecs.Borrow) error {
	terrain := ecs.Fetch[resource.LevelTerrain](b).Terrain
	if terrain == nil {
		return nil
	}
	ecs.Each3(ecs.Write[component.Position](b), ecs.Write[component.MovingObject](b), ecs.Write[component.HasAABB](b),
		func(id ecs.EntityID, p *component.Position, m *component.MovingObject, a *component.HasAABB) {
			for pass := 0; pass < maxResolvePasses; pass++ {
				push, ok := deepestPush(a.Bounds(), terrain.EachSolidIn)
				if !ok {
					return
				}
				p.X += push.X
				p.Y += push.Y
				a.Recompute(*p)

				normal := geom.V(sign(push.X), sign(push.Y))
				if normal.X != 0 && m.Velocity.X*normal.X < 0 {
					m.Velocity.X = 0
				}
				if normal.Y != 0 && m.Velocity.Y*normal.Y < 0 {
					m.Velocity.Y = 0
				}
				event.Emit(s.bus, event.Contact{Entity: id, Normal: normal})
			}
		})
	return nil
}

// deepestPush finds the solid tile overlapping box by the largest area and
// returns the smallest translation separating box from it. Equal
// penetrations resolve vertically.
func deepestPush(box geom.Rect, each func(geom.Rect, func(x, y int, tile geom.Rect))) (geom.Vec2, bool) {
	var (
		best  geom.Vec2
		area  float64
		found bool
	)
	each(box, func(_, _ int, tile geom.Rect) {
		ox := min(box.Max.X-tile.Min.X, tile.Max.X-box.Min.X)
		oy := min(box.Max.Y-tile.Min.Y, tile.Max.Y-box.Min.Y)
		if found && ox*oy <= area {
			return
		}
		found, area = true, ox*oy

		c, tc := box.Center(), tile.Center()
		if ox < oy {
			if c.X < tc.X {
				best = geom.V(-ox, 0)
			} else {
				best = geom.V(ox, 0)
			}
			return
		}
		if c.Y < tc.Y {
			best = geom.V(0, -oy)
		} else {
			best = geom.V(0, oy)
		}
	})
	return best, found
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
