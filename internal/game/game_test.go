package game

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/graveyard/engine/internal/camera"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	"github.com/graveyard/engine/internal/data"
	"github.com/graveyard/engine/internal/input"
	"github.com/graveyard/engine/internal/persist"
	"github.com/graveyard/engine/internal/render"
	"github.com/graveyard/engine/internal/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const frameTime = time.Second / 60

func loadShipped(t *testing.T) (*data.Level, *data.AssetManifest) {
	t.Helper()
	lvl, err := data.LoadLevel(filepath.Join("..", "..", "data", "levels", "graveyard.yaml"))
	require.NoError(t, err)
	assets, err := data.LoadAssets(filepath.Join("..", "..", "data", "assets.yaml"))
	require.NoError(t, err)
	return lvl, assets
}

func newGame(t *testing.T, workers int, backend render.Backend) *Game {
	t.Helper()
	lvl, assets := loadShipped(t)
	g, err := New(Options{
		Level:    lvl,
		Assets:   assets,
		Backend:  backend,
		Camera:   camera.ForWindow(800, 600, 1),
		Workers:  workers,
		MaxDelta: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func positionOf(t *testing.T, g *Game, name string) component.Position {
	t.Helper()
	id, ok := g.Entity(name)
	require.True(t, ok, name)
	p, ok := ecs.Components[component.Position](g.World()).Get(id)
	require.True(t, ok)
	return *p
}

func TestNewRequiresInputs(t *testing.T) {
	_, err := New(Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestPlayerLandsAndCameraFollows(t *testing.T) {
	rec := render.NewRecorder()
	g := newGame(t, 4, rec)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		require.NoError(t, g.Frame(ctx, frameTime))
	}

	p := positionOf(t, g, "player")
	assert.InDelta(t, 48, p.Y, 1e-6, "player rests on the floor row")
	assert.InDelta(t, 96, p.X, 1e-6)

	cam := ecs.ReadResource[camera.Camera](g.World())
	assert.Equal(t, p.Vec(), cam.Location(), "snap camera follows the player")
	assert.Equal(t, cam.Location(), positionOf(t, g, "moon").Vec(), "chase entity sits on the camera")

	assert.Len(t, rec.Frames(), 120)
	assert.EqualValues(t, 120, g.FrameCount())
}

func TestInputMovesPlayer(t *testing.T) {
	g := newGame(t, 2, render.NewRecorder())
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		require.NoError(t, g.Frame(ctx, frameTime))
	}
	rest := positionOf(t, g, "player")

	// Open sky above the spawn point; the platforms start further right.
	g.Queue().Push(input.KeyDown{Key: input.KeyJump})
	require.NoError(t, g.Frame(ctx, frameTime))
	require.NoError(t, g.Frame(ctx, frameTime))
	assert.Greater(t, positionOf(t, g, "player").Y, rest.Y, "jump from the ground")

	for i := 0; i < 60; i++ {
		require.NoError(t, g.Frame(ctx, frameTime))
	}
	landed := positionOf(t, g, "player")
	assert.InDelta(t, rest.Y, landed.Y, 1e-6, "back on the floor")

	g.Queue().Push(input.KeyDown{Key: input.KeyRight})
	for i := 0; i < 30; i++ {
		require.NoError(t, g.Frame(ctx, frameTime))
	}
	assert.Greater(t, positionOf(t, g, "player").X, landed.X)

	id, _ := g.Entity("player")
	d, _ := ecs.Components[component.Directional](g.World()).Get(id)
	assert.Equal(t, component.Right, *d)
}

func TestFramesAreDeterministicAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) map[string]component.Position {
		g := newGame(t, workers, render.NewRecorder())
		for i := 0; i < 300; i++ {
			if i == 10 {
				g.Queue().Push(input.KeyDown{Key: input.KeyRight})
			}
			if i == 50 {
				g.Queue().Push(input.KeyDown{Key: input.KeyJump})
			}
			require.NoError(t, g.Frame(context.Background(), frameTime))
		}
		out := make(map[string]component.Position)
		for _, name := range []string{"player", "zombie", "bat", "moon"} {
			out[name] = positionOf(t, g, name)
		}
		return out
	}
	assert.Equal(t, run(1), run(8))
}

func TestMaxDeltaClampsLongFrames(t *testing.T) {
	g := newGame(t, 1, render.NewRecorder())
	start := positionOf(t, g, "zombie")
	require.NoError(t, g.Frame(context.Background(), 10*time.Second))
	assert.InDelta(t, start.X-2, positionOf(t, g, "zombie").X, 1e-9, "20 units/s for at most 100ms")
}

type brokenBackend struct{ render.Recorder }

func (b *brokenBackend) Submit(render.Submission) error { return errors.New("surface lost") }

func TestBackendErrorEndsFrame(t *testing.T) {
	g := newGame(t, 2, &brokenBackend{})
	err := g.Frame(context.Background(), frameTime)
	require.Error(t, err)
	assert.ErrorContains(t, err, "surface lost")
	assert.ErrorContains(t, err, "output phase")
}

type memSaver struct{ got []persist.Checkpoint }

func (m *memSaver) Submit(cp persist.Checkpoint) { m.got = append(m.got, cp) }

func TestCheckpointRoundTrip(t *testing.T) {
	lvl, assets := loadShipped(t)
	saver := &memSaver{}
	label := system.CheckpointLabel{LevelID: lvl.ID, TerrainDigest: lvl.Terrain.Digest()}
	g, err := New(Options{
		Level:              lvl,
		Assets:             assets,
		Backend:            render.NewRecorder(),
		Camera:             camera.ForWindow(800, 600, 1),
		Workers:            2,
		Saver:              saver,
		CheckpointLabel:    label,
		CheckpointInterval: 30,
	}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 90; i++ {
		require.NoError(t, g.Frame(context.Background(), frameTime))
	}
	require.Len(t, saver.got, 3)
	last := saver.got[2]
	assert.Equal(t, uint64(90), last.Frame)
	assert.Equal(t, label.TerrainDigest, last.TerrainDigest)

	fresh := newGame(t, 2, render.NewRecorder())
	n := fresh.Restore(&last)
	assert.Equal(t, len(lvl.Spawns), n)
	for _, st := range last.Entities {
		p := positionOf(t, fresh, st.Name)
		assert.Equal(t, st.X, p.X, st.Name)
		assert.Equal(t, st.Y, p.Y, st.Name)
	}
	assert.Equal(t, last.Entities, fresh.Snapshot(label).Entities)
}

func TestRestoreSkipsUnknownNames(t *testing.T) {
	g := newGame(t, 1, render.NewRecorder())
	n := g.Restore(&persist.Checkpoint{Entities: []persist.EntityState{{Name: "vampire", X: 1}}})
	assert.Zero(t, n)
}
