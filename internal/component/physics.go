package component

import "github.com/graveyard/engine/internal/geom"

// Position is the world-space location of an entity. World y grows upward.
type Position struct {
	X, Y float64
}

func (p Position) Vec() geom.Vec2 { return geom.Vec2{X: p.X, Y: p.Y} }

// MovingObject carries an entity-local velocity in world units per second.
// The zero vector means stationary.
type MovingObject struct {
	Velocity geom.Vec2
}

// HasAABB holds the half-extents of an entity's collision box. The world
// bounds are derived and only ever written by Recompute.
type HasAABB struct {
	HalfExtents geom.Vec2
	bounds      geom.Rect
}

func NewAABB(halfW, halfH float64) *HasAABB {
	return &HasAABB{HalfExtents: geom.V(halfW, halfH)}
}

// Bounds returns the box as of the last Recompute.
func (a *HasAABB) Bounds() geom.Rect { return a.bounds }

// Recompute derives the world bounds from p and the half-extents.
func (a *HasAABB) Recompute(p Position) {
	a.bounds = geom.RectAround(p.Vec(), a.HalfExtents)
}
