package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/sources/homepage"
)

// Importer appends pre-extracted links to the collection, skipping URLs it
// already holds.
type Importer interface {
	Import(ctx context.Context, links []domain.Extraction) ([]*domain.Bookmark, error)
}

// HomepageImporter periodically imports the links of a Homepage
// services.yaml or bookmarks.yaml. Links already saved are left alone, so
// only new entries are added on each run.
type HomepageImporter struct {
	loader   *homepage.Loader
	mapper   *homepage.Mapper
	importer Importer
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHomepageImporter creates a new homepage importer
func NewHomepageImporter(
	file string,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
) *HomepageImporter {
	return &HomepageImporter{
		loader:   homepage.NewLoader(file),
		mapper:   homepage.NewMapper(),
		importer: importer,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start imports once, then on every interval until Stop or ctx is done.
func (hi *HomepageImporter) Start(ctx context.Context) {
	hi.runLogged(ctx)

	ticker := time.NewTicker(hi.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hi.runLogged(ctx)
			case <-hi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the importer
func (hi *HomepageImporter) Stop() {
	hi.stopOnce.Do(func() { close(hi.stopCh) })
}

// Run loads the file and imports its links. It returns the number added.
func (hi *HomepageImporter) Run(ctx context.Context) (int, error) {
	file, err := hi.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load homepage file: %w", err)
	}

	links, err := hi.mapper.Map(file)
	if err != nil {
		return 0, fmt.Errorf("failed to map homepage links: %w", err)
	}

	added, err := hi.importer.Import(ctx, links)
	if err != nil {
		return 0, err
	}
	return len(added), nil
}

func (hi *HomepageImporter) runLogged(ctx context.Context) {
	n, err := hi.Run(ctx)
	if err != nil {
		hi.logger.Error("failed to import homepage links", logger.Error(err))
		return
	}
	hi.logger.Info("homepage links imported", logger.Int("added", n))
}
