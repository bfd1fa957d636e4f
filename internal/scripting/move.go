package scripting

import "github.com/graveyard/engine/internal/geom"

// MoveContext is the input of one player velocity step.
type MoveContext struct {
	Left, Right bool
	Jump, Slide bool
	Grounded    bool
	Velocity    geom.Vec2
	DT          float64 // seconds
}

// MoveResult is the new velocity. The caller owns the jump intent and
// drops it after every step.
type MoveResult struct {
	Velocity geom.Vec2
}

// Tunables parameterize the built-in movement formula. Speeds are world
// units per second.
type Tunables struct {
	RunSpeed    float64
	JumpSpeed   float64
	Gravity     float64
	MaxFall     float64
	SlideFactor float64
}

var DefaultTunables = Tunables{
	RunSpeed:    120,
	JumpSpeed:   330,
	Gravity:     900,
	MaxFall:     600,
	SlideFactor: 1.6,
}

// Mover computes player velocities.
type Mover interface {
	PlayerVelocity(ctx MoveContext) MoveResult
}

// Builtin is a Mover using Move with fixed tunables.
type Builtin Tunables

func (b Builtin) PlayerVelocity(ctx MoveContext) MoveResult { return Move(ctx, Tunables(b)) }

// Move is the built-in platformer step: horizontal speed follows intent,
// gravity pulls down to a terminal speed, and a jump only starts from the
// ground.
func Move(ctx MoveContext, t Tunables) MoveResult {
	var vx float64
	switch {
	case ctx.Left && !ctx.Right:
		vx = -t.RunSpeed
	case ctx.Right && !ctx.Left:
		vx = t.RunSpeed
	}
	if ctx.Slide && ctx.Grounded {
		vx *= t.SlideFactor
	}

	vy := ctx.Velocity.Y - t.Gravity*ctx.DT
	if vy < -t.MaxFall {
		vy = -t.MaxFall
	}

	if ctx.Jump && ctx.Grounded {
		vy = t.JumpSpeed
	}
	return MoveResult{Velocity: geom.V(vx, vy)}
}
