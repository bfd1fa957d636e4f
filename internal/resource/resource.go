// Package resource holds the frame-scoped singletons stored in the world's
// resource slots.
package resource

import (
	"time"

	"github.com/graveyard/engine/internal/data"
)

// DeltaTime is the elapsed time since the previous frame, re-seeded by the
// frame clock before every dispatch.
type DeltaTime struct {
	Time  time.Duration
	Frame uint64
}

// Seconds returns the elapsed time in seconds.
func (d DeltaTime) Seconds() float64 { return d.Time.Seconds() }

// PlayerInput is the set of player intents for the current frame.
type PlayerInput struct {
	Left, Right, Up, Down bool
	Jump, Attack, Slide   bool
}

// LevelTerrain is the collision geometry of the loaded level. It is loaded
// once and never mutated.
type LevelTerrain struct {
	Terrain *data.Terrain
}
