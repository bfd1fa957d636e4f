package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Checkpoint is a snapshot of the named entities of a level at one frame.
type Checkpoint struct {
	ID            int64
	RunID         uuid.UUID
	LevelID       string
	TerrainDigest string
	Frame         uint64
	CreatedAt     time.Time
	Entities      []EntityState
}

// EntityState is the saved state of one named entity.
type EntityState struct {
	Name   string
	X, Y   float64
	VX, VY float64
	Facing int16
}

type CheckpointRepo struct {
	db *DB
}

func NewCheckpointRepo(db *DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

// Save writes a checkpoint and its entities in one transaction and returns
// the new checkpoint id.
func (r *CheckpointRepo) Save(ctx context.Context, cp Checkpoint) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("checkpoint begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO checkpoints (run_id, level_id, terrain_digest, frame)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		cp.RunID, cp.LevelID, cp.TerrainDigest, int64(cp.Frame),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("checkpoint insert: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range cp.Entities {
		batch.Queue(
			`INSERT INTO checkpoint_entities (checkpoint_id, name, x, y, vx, vy, facing)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, e.Name, e.X, e.Y, e.VX, e.VY, e.Facing,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("checkpoint entities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("checkpoint commit: %w", err)
	}
	return id, nil
}

// LoadLatest returns the newest checkpoint for a level whose terrain still
// has the given digest, or nil when there is none.
func (r *CheckpointRepo) LoadLatest(ctx context.Context, levelID, digest string) (*Checkpoint, error) {
	cp := &Checkpoint{LevelID: levelID, TerrainDigest: digest}
	var frame int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, run_id, frame, created_at FROM checkpoints
		 WHERE level_id = $1 AND terrain_digest = $2
		 ORDER BY id DESC LIMIT 1`, levelID, digest,
	).Scan(&cp.ID, &cp.RunID, &frame, &cp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint load: %w", err)
	}
	cp.Frame = uint64(frame)

	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, x, y, vx, vy, facing FROM checkpoint_entities
		 WHERE checkpoint_id = $1 ORDER BY name`, cp.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("checkpoint entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e EntityState
		if err := rows.Scan(&e.Name, &e.X, &e.Y, &e.VX, &e.VY, &e.Facing); err != nil {
			return nil, err
		}
		cp.Entities = append(cp.Entities, e)
	}
	return cp, rows.Err()
}

// Prune keeps the newest keep checkpoints of a level and deletes the rest.
func (r *CheckpointRepo) Prune(ctx context.Context, levelID string, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM checkpoints WHERE level_id = $1 AND id NOT IN (
		   SELECT id FROM checkpoints WHERE level_id = $1 ORDER BY id DESC LIMIT $2)`,
		levelID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("checkpoint prune: %w", err)
	}
	return tag.RowsAffected(), nil
}
