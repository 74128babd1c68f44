// Package scheduler runs the background jobs that keep the read replica in
// step with the collection.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/collection"
	"github.com/MrSnakeDoc/shelf/internal/index"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// Syncer reloads the whole collection into the replica at startup, on an
// interval and on manual trigger.
type Syncer struct {
	collection    *collection.Collection
	index         *index.MemoryIndex
	metrics       *metrics.Metrics
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewSyncer creates a new replica syncer
func NewSyncer(
	col *collection.Collection,
	idx *index.MemoryIndex,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
) *Syncer {
	return &Syncer{
		collection:    col,
		index:         idx,
		metrics:       m,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
	}
}

// Start syncs once, then keeps syncing in the background until Stop or ctx
// is done. A failed sync is logged and leaves the replica as it was.
func (s *Syncer) Start(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("initial replica sync failed", logger.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.syncLogged(ctx)
			case <-s.manualTrigger:
				s.logger.Info("manual replica sync triggered")
				s.syncLogged(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background loop. It is safe to call more than once.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Trigger requests a sync without waiting for it. It reports false when a
// sync is already pending.
func (s *Syncer) Trigger() bool {
	select {
	case s.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// syncAttempts bounds the reads of one Sync when saves keep patching the
// replica meanwhile.
const syncAttempts = 3

// Sync loads the collection and replaces the replica with it. A snapshot
// read while the replica was patched is discarded and read again; if the
// replica keeps moving, it is left as patched until the next sync.
func (s *Syncer) Sync(ctx context.Context) error {
	for attempt := 1; attempt <= syncAttempts; attempt++ {
		gen := s.index.Generation()

		bookmarks, err := s.collection.List(ctx)
		if err != nil {
			return fmt.Errorf("sync replica: %w", err)
		}

		if s.index.ReplaceIf(gen, bookmarks) {
			s.metrics.SetReplicaSize(len(bookmarks))
			s.logger.Debug("replica synced", logger.Int("count", len(bookmarks)))
			return nil
		}
		s.logger.Debug("replica patched during sync, reading again", logger.Int("attempt", attempt))
	}

	s.logger.Warn("replica sync skipped, collection kept changing",
		logger.Int("attempts", syncAttempts))
	return nil
}

func (s *Syncer) syncLogged(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("failed to sync replica", logger.Error(err))
	}
}
