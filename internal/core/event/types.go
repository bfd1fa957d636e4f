package event

import (
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/geom"
)

// Contact is emitted by terrain resolution when an entity was pushed out of
// solid terrain. Normal points away from the surface that was hit.
type Contact struct {
	Entity ecs.EntityID
	Normal geom.Vec2
}

// Grounded reports whether the contact was with a floor.
func (c Contact) Grounded() bool { return c.Normal.Y > 0 }
