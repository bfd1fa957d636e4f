package system

import (
	"sort"

	"github.com/google/uuid"
	"github.com/graveyard/engine/internal/component"
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
	"github.com/graveyard/engine/internal/persist"
	"github.com/graveyard/engine/internal/resource"
)

// Saver accepts checkpoints for writing off the frame loop.
type Saver interface {
	Submit(cp persist.Checkpoint)
}

// CheckpointLabel identifies the run and level a checkpoint belongs to.
type CheckpointLabel struct {
	RunID         uuid.UUID
	LevelID       string
	TerrainDigest string
}

// CheckpointSystem snapshots the named entities every interval frames and
// hands the snapshot to a Saver. Phase 5 (Persist).
type CheckpointSystem struct {
	saver    Saver
	label    CheckpointLabel
	interval uint64
}

func NewCheckpointSystem(saver Saver, label CheckpointLabel, interval uint64) *CheckpointSystem {
	if interval == 0 {
		interval = 1
	}
	return &CheckpointSystem{saver: saver, label: label, interval: interval}
}

func (s *CheckpointSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *CheckpointSystem) Access() ecs.Access { return SnapshotAccess() }

// SnapshotAccess is the access Snapshot needs.
func SnapshotAccess() ecs.Access {
	return ecs.Access{}.Read(
		ecs.ComponentKind[component.Named](),
		ecs.ComponentKind[component.Position](),
		ecs.ComponentKind[component.MovingObject](),
		ecs.ComponentKind[component.Directional](),
		ecs.ResourceKind[resource.DeltaTime](),
	)
}

func (s *CheckpointSystem) Run(b *ecs.Borrow) error {
	frame := ecs.Fetch[resource.DeltaTime](b).Frame
	if frame == 0 || frame%s.interval != 0 {
		return nil
	}
	s.saver.Submit(Snapshot(b, s.label, frame))
	return nil
}

// Snapshot collects the state of every named entity with a position,
// ordered by name.
func Snapshot(b *ecs.Borrow, label CheckpointLabel, frame uint64) persist.Checkpoint {
	moving := ecs.Read[component.MovingObject](b)
	facing := ecs.Read[component.Directional](b)

	cp := persist.Checkpoint{
		RunID:         label.RunID,
		LevelID:       label.LevelID,
		TerrainDigest: label.TerrainDigest,
		Frame:         frame,
	}
	ecs.Each2(ecs.Read[component.Named](b), ecs.Read[component.Position](b),
		func(id ecs.EntityID, n *component.Named, p *component.Position) {
			st := persist.EntityState{Name: n.Name, X: p.X, Y: p.Y}
			if m, ok := moving.Get(id); ok {
				st.VX, st.VY = m.Velocity.X, m.Velocity.Y
			}
			if d, ok := facing.Get(id); ok {
				st.Facing = int16(*d)
			}
			cp.Entities = append(cp.Entities, st)
		})
	sort.Slice(cp.Entities, func(i, j int) bool { return cp.Entities[i].Name < cp.Entities[j].Name })
	return cp
}
