// Package game wires the world, its resources and the systems of a level
// into a frame-steppable unit.
package game

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/core/event"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/data"
	"github.com/graveyard/engine/internal/geom"
	"github.com/graveyard/engine/internal/input"
	"github.com/graveyard/engine/internal/persist"
	"github.com/graveyard/engine/internal/render"
	"github.com/graveyard/engine/internal/resource"
	"github.com/graveyard/engine/internal/scripting"
	"github.com/graveyard/engine/internal/system"
	"go.uber.org/zap"
)

// Options configures a Game. Level, Assets and Backend are required.
type Options struct {
	Level   *data.Level
	Assets  *data.AssetManifest
	Backend render.Backend
	Camera  camera.Camera

	Queue    *input.Queue    // nil: a fresh queue
	Mover    scripting.Mover // nil: built-in movement
	Workers  int             // 0: GOMAXPROCS
	MaxDelta time.Duration   // 0: no clamp

	// Saver enables checkpoints every CheckpointInterval frames.
	Saver              system.Saver
	CheckpointLabel    system.CheckpointLabel
	CheckpointInterval uint64
}

// Game owns the world of one level.
type Game struct {
	world    *ecs.World
	sched    *coresys.Scheduler
	backend  render.Backend
	queue    *input.Queue
	bus      *event.Bus
	log      *zap.Logger
	maxDelta time.Duration
	frame    uint64
	named    map[string]ecs.EntityID
}

func New(opts Options, log *zap.Logger) (*Game, error) {
	if opts.Level == nil || opts.Assets == nil || opts.Backend == nil {
		return nil, fmt.Errorf("game needs a level, assets and a backend")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queue := opts.Queue
	if queue == nil {
		queue = input.NewQueue(64)
	}
	mover := opts.Mover
	if mover == nil {
		mover = scripting.Builtin(scripting.DefaultTunables)
	}

	g := &Game{
		world:    ecs.NewWorld(),
		backend:  opts.Backend,
		queue:    queue,
		bus:      event.NewBus(),
		log:      log,
		maxDelta: opts.MaxDelta,
		named:    make(map[string]ecs.EntityID, len(opts.Level.Spawns)),
	}

	w := g.world
	registerKinds(w)
	ecs.InsertResource(w, resource.DeltaTime{})
	ecs.InsertResource(w, resource.PlayerInput{})
	ecs.InsertResource(w, resource.LevelTerrain{Terrain: opts.Level.Terrain})
	ecs.InsertResource(w, opts.Camera)
	ecs.InsertResource(w, *render.NewAssets(opts.Assets, opts.Level.Terrain))

	if opts.Level.Background != "" {
		id := w.CreateEntity()
		ecs.Components[component.Position](w).Set(id, &component.Position{})
		ecs.Components[component.Renderable](w).Set(id, &component.Renderable{
			Layer: BackgroundLayer,
			Kind:  component.Batch{ID: opts.Level.Background},
		})
	}
	for _, s := range opts.Level.Spawns {
		g.named[s.Name] = spawn(w, s)
	}

	b := coresys.NewBuilder(log).Workers(workers).
		Add(system.NewInputSystem(queue), system.NameInput).
		Add(system.NewEventSystem(g.bus), system.NameEvents).
		Add(system.NewPlayerSystem(mover, g.bus), system.NamePlayer).
		Add(system.NewMovingSystem(), system.NameMoving).
		Add(system.NewAABBSystem(), system.NameAABB, system.NameMoving).
		Add(system.NewPositionSystem(g.bus), system.NamePosition, system.NameMoving, system.NameAABB).
		Add(system.NewCameraSnapSystem(), system.NameCameraSnap).
		Add(system.NewCameraChaseSystem(), system.NameCameraChase, system.NameCameraSnap).
		Add(system.NewRenderSystem(render.NewAggregator(opts.Backend, log)), system.NameRender).
		Add(system.NewAnimationSystem(workers), system.NameAnimation, system.NameRender)
	if opts.Saver != nil {
		b.Add(system.NewCheckpointSystem(opts.Saver, opts.CheckpointLabel, opts.CheckpointInterval), system.NameCheckpoint)
	}
	b.Add(system.NewCleanupSystem(log), system.NameCleanup)

	sched, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	if err := sched.Validate(w); err != nil {
		return nil, fmt.Errorf("validate scheduler: %w", err)
	}
	g.sched = sched

	for phase, names := range sched.Order() {
		log.Debug("phase order", zap.Stringer("phase", phase), zap.Strings("systems", names))
	}
	log.Info("level ready",
		zap.String("level", opts.Level.ID),
		zap.Int("entities", w.Pool().Len()),
		zap.Int("workers", workers),
	)
	return g, nil
}

// Frame advances the game by dt and presents the result. An error ends the
// frame loop.
func (g *Game) Frame(ctx context.Context, dt time.Duration) error {
	if g.maxDelta > 0 && dt > g.maxDelta {
		dt = g.maxDelta
	}
	g.frame++
	ecs.UpdateResource(g.world, func(d *resource.DeltaTime) {
		d.Time = dt
		d.Frame = g.frame
	})

	if err := g.sched.Dispatch(ctx, g.world); err != nil {
		return fmt.Errorf("frame %d: %w", g.frame, err)
	}
	if err := g.backend.Present(); err != nil {
		return fmt.Errorf("present frame %d: %w", g.frame, err)
	}
	return nil
}

func (g *Game) World() *ecs.World { return g.world }

func (g *Game) Queue() *input.Queue { return g.queue }

// FrameCount is the number of frames run so far.
func (g *Game) FrameCount() uint64 { return g.frame }

// Entity looks up a spawned entity by its level name.
func (g *Game) Entity(name string) (ecs.EntityID, bool) {
	id, ok := g.named[name]
	if !ok || !g.world.Alive(id) {
		return 0, false
	}
	return id, true
}

// Snapshot captures the named entities outside the frame loop.
func (g *Game) Snapshot(label system.CheckpointLabel) persist.Checkpoint {
	b := g.world.Acquire("snapshot", system.SnapshotAccess())
	defer b.Release()
	return system.Snapshot(b, label, g.frame)
}

// Restore applies a checkpoint to the entities of the same names and
// returns how many were restored. Names the level no longer has are
// skipped. Must not run concurrently with Frame.
func (g *Game) Restore(cp *persist.Checkpoint) int {
	positions := ecs.Components[component.Position](g.world)
	moving := ecs.Components[component.MovingObject](g.world)
	facing := ecs.Components[component.Directional](g.world)
	boxes := ecs.Components[component.HasAABB](g.world)

	n := 0
	for _, st := range cp.Entities {
		id, ok := g.Entity(st.Name)
		if !ok {
			g.log.Debug("checkpoint entity not in level", zap.String("name", st.Name))
			continue
		}
		p, ok := positions.Get(id)
		if !ok {
			continue
		}
		p.X, p.Y = st.X, st.Y
		if m, ok := moving.Get(id); ok {
			m.Velocity = geom.V(st.VX, st.VY)
		}
		if d, ok := facing.Get(id); ok {
			*d = component.Directional(st.Facing)
		}
		if a, ok := boxes.Get(id); ok {
			a.Recompute(*p)
		}
		n++
	}
	return n
}
