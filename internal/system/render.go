package system

import (
	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/render"
)

// RenderSystem submits the frame's draws to the backend. Phase 4 (Output).
type RenderSystem struct {
	agg *render.Aggregator
}

func NewRenderSystem(agg *render.Aggregator) *RenderSystem {
	return &RenderSystem{agg: agg}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(
			ecs.ComponentKind[component.Renderable](),
			ecs.ComponentKind[component.Position](),
			ecs.ComponentKind[component.Scalable](),
			ecs.ComponentKind[component.Directional](),
			ecs.ResourceKind[camera.Camera](),
		).
		Write(ecs.ResourceKind[render.Assets]())
}

func (s *RenderSystem) Run(b *ecs.Borrow) error {
	return s.agg.Draw(ecs.Fetch[camera.Camera](b), ecs.FetchMut[render.Assets](b), render.Scene{
		Renderables:  ecs.Read[component.Renderable](b),
		Positions:    ecs.Read[component.Position](b),
		Scalables:    ecs.Read[component.Scalable](b),
		Directionals: ecs.Read[component.Directional](b),
	})
}
