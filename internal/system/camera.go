package system

import (
	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
)

// CameraSnapSystem moves the camera onto the SnapCamera entity. With more
// than one, the last in join order wins. Phase 3 (PostUpdate).
type CameraSnapSystem struct{}

func NewCameraSnapSystem() *CameraSnapSystem { return &CameraSnapSystem{} }

func (s *CameraSnapSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CameraSnapSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(ecs.ComponentKind[component.SnapCamera](), ecs.ComponentKind[component.Position]()).
		Write(ecs.ResourceKind[camera.Camera]())
}

func (s *CameraSnapSystem) Run(b *ecs.Borrow) error {
	cam := ecs.FetchMut[camera.Camera](b)
	ecs.Each2(ecs.Read[component.SnapCamera](b), ecs.Read[component.Position](b),
		func(_ ecs.EntityID, _ *component.SnapCamera, p *component.Position) {
			cam.MoveTo(p.Vec())
		})
	return nil
}

// CameraChaseSystem places ChaseCamera entities at the camera location.
// Phase 3 (PostUpdate).
type CameraChaseSystem struct{}

func NewCameraChaseSystem() *CameraChaseSystem { return &CameraChaseSystem{} }

func (s *CameraChaseSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CameraChaseSystem) Access() ecs.Access {
	return ecs.Access{}.
		Read(ecs.ComponentKind[component.ChaseCamera](), ecs.ResourceKind[camera.Camera]()).
		Write(ecs.ComponentKind[component.Position]())
}

func (s *CameraChaseSystem) Run(b *ecs.Borrow) error {
	loc := ecs.Fetch[camera.Camera](b).Location()
	ecs.Each2(ecs.Read[component.ChaseCamera](b), ecs.Write[component.Position](b),
		func(_ ecs.EntityID, _ *component.ChaseCamera, p *component.Position) {
			p.X, p.Y = loc.X, loc.Y
		})
	return nil
}
