package persist

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CheckpointStore persists checkpoints.
type CheckpointStore interface {
	Save(ctx context.Context, cp Checkpoint) (int64, error)
}

// Writer saves checkpoints off the frame loop. At most one checkpoint waits
// while another is being written; a newer submission replaces it.
type Writer struct {
	store CheckpointStore
	log   *zap.Logger

	mu      sync.Mutex
	pending *Checkpoint
	wake    chan struct{}
}

func NewWriter(store CheckpointStore, log *zap.Logger) *Writer {
	return &Writer{
		store: store,
		log:   log,
		wake:  make(chan struct{}, 1),
	}
}

// Submit queues cp for writing and never blocks.
func (w *Writer) Submit(cp Checkpoint) {
	w.mu.Lock()
	if w.pending != nil {
		w.log.Debug("checkpoint superseded", zap.Uint64("frame", w.pending.Frame))
	}
	w.pending = &cp
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run writes submitted checkpoints until ctx is done. The checkpoint queued
// at cancellation is written with a fresh context before Run returns.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-w.wake:
			w.flush(ctx)
		}
	}
}

func (w *Writer) flush(ctx context.Context) {
	w.mu.Lock()
	cp := w.pending
	w.pending = nil
	w.mu.Unlock()
	if cp == nil {
		return
	}

	id, err := w.store.Save(ctx, *cp)
	if err != nil {
		w.log.Error("checkpoint save failed", zap.Uint64("frame", cp.Frame), zap.Error(err))
		return
	}
	w.log.Debug("checkpoint saved",
		zap.Int64("id", id),
		zap.String("level", cp.LevelID),
		zap.Uint64("frame", cp.Frame),
		zap.Int("entities", len(cp.Entities)),
	)
}
