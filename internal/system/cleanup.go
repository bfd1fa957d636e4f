package system

import (
	"github.com/graveyard/engine/internal/core/ecs"
	coresys "github.com/graveyard/engine/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end.
// It takes every lock, so nothing else runs beside it. Phase 6 (Cleanup).
type CleanupSystem struct {
	log *zap.Logger
}

func NewCleanupSystem(log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Access() ecs.Access { return ecs.Exclusive() }

func (s *CleanupSystem) Run(b *ecs.Borrow) error {
	if n := b.World().FlushDestroyQueue(); n > 0 {
		s.log.Debug("destroyed entities", zap.Int("count", n))
	}
	return nil
}
