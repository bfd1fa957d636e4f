package game

import (
	"fmt"

	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/data"
)

// BackgroundLayer is the layer of the level background batch, below any
// layer a level file is expected to use.
const BackgroundLayer = -1000

// registerKinds registers every component kind the systems use.
func registerKinds(w *ecs.World) {
	ecs.Register[component.Position](w)
	ecs.Register[component.MovingObject](w)
	ecs.Register[component.HasAABB](w)
	ecs.Register[component.Renderable](w)
	ecs.Register[component.Scalable](w)
	ecs.Register[component.Directional](w)
	ecs.Register[component.HasAnimationSequence](w)
	ecs.Register[component.SnapCamera](w)
	ecs.Register[component.ChaseCamera](w)
	ecs.Register[component.PlayerControlled](w)
	ecs.Register[component.Named](w)
}

// spawn creates the entity described by s. Optional blocks of the spawn
// become optional components.
func spawn(w *ecs.World, s data.Spawn) ecs.EntityID {
	id := w.CreateEntity()

	pos := component.Position{X: s.Position[0], Y: s.Position[1]}
	ecs.Components[component.Position](w).Set(id, &pos)
	ecs.Components[component.Named](w).Set(id, &component.Named{Name: s.Name})

	if s.Velocity != nil || s.Player {
		m := &component.MovingObject{}
		if s.Velocity != nil {
			m.Velocity = s.Velocity.Vec()
		}
		ecs.Components[component.MovingObject](w).Set(id, m)
	}
	if s.HalfExtents != nil {
		box := component.NewAABB(s.HalfExtents[0], s.HalfExtents[1])
		box.Recompute(pos)
		ecs.Components[component.HasAABB](w).Set(id, box)
	}
	if s.Scale != nil {
		ecs.Components[component.Scalable](w).Set(id, &component.Scalable{X: s.Scale[0], Y: s.Scale[1]})
	}
	if s.Facing != "" || s.Player {
		d := component.Right
		if s.Facing == "left" {
			d = component.Left
		}
		ecs.Components[component.Directional](w).Set(id, &d)
	}
	if s.Render != nil {
		r, seq := renderable(s.Render)
		ecs.Components[component.Renderable](w).Set(id, r)
		if seq != nil {
			ecs.Components[component.HasAnimationSequence](w).Set(id, &component.HasAnimationSequence{Sequence: seq})
		}
	}
	if s.SnapCamera {
		ecs.Components[component.SnapCamera](w).Set(id, &component.SnapCamera{})
	}
	if s.ChaseCamera {
		ecs.Components[component.ChaseCamera](w).Set(id, &component.ChaseCamera{})
	}
	if s.Player {
		ecs.Components[component.PlayerControlled](w).Set(id, &component.PlayerControlled{})
	}
	return id
}

func renderable(r *data.RenderSpec) (*component.Renderable, component.Sequence) {
	out := &component.Renderable{Layer: r.Layer}
	switch {
	case r.Image != "":
		out.Kind = component.Image{ID: r.Image}
	case r.Batch != "":
		out.Kind = component.Batch{ID: r.Batch}
	case r.Animation != "":
		out.Kind = component.Animation{ID: r.Animation, Frame: r.Frame, Length: r.Length}
	default:
		panic(fmt.Sprintf("game: render spec without variant: %+v", *r))
	}

	if r.Sequence == nil {
		return out, nil
	}
	switch r.Sequence.Kind {
	case "cycle":
		return out, component.Cycle(r.Length)
	case "once":
		return out, component.Once(r.Length)
	case "frames":
		return out, component.Frames(r.Sequence.Frames, r.Sequence.Loop)
	}
	return out, nil
}
