// Package bookmark runs the save pipeline (load, extract, assemble, persist)
// and the retag/remove/list operations over the collection.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/collection"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/extract"
	"github.com/MrSnakeDoc/shelf/internal/index"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/page"
)

const (
	// FallbackContent marks records built without reading the page.
	FallbackContent = "Content could not be extracted (possibly due to security policy)."
	fallbackAuthor  = "Unknown"
)

// ErrUnknownTopic is returned when retagging to a label outside the taxonomy.
var ErrUnknownTopic = errors.New("unknown topic")

// PageLoader fetches a remote page.
type PageLoader interface {
	Fetch(ctx context.Context, url string) (*page.Document, error)
}

// Request is a "bookmark this" action.
type Request struct {
	URL string
	// HTML is the captured page. When empty the page is fetched from URL.
	HTML string
	// Title is the caller's view of the page title, used by the fallback record.
	Title string
	// Target is a CSS selector for the element the user pointed at.
	// Empty means the whole page.
	Target string
	// Favicon is used as thumbnail by the fallback record.
	Favicon string
}

// Service wires the pipeline stages together.
type Service struct {
	loader     PageLoader
	dispatcher *extract.Dispatcher
	assembler  *Assembler
	collection *collection.Collection
	index      *index.MemoryIndex
	taxonomy   domain.Taxonomy
	retryDelay time.Duration
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Options struct {
	Loader     PageLoader
	Dispatcher *extract.Dispatcher
	Assembler  *Assembler
	Collection *collection.Collection
	Index      *index.MemoryIndex
	Taxonomy   domain.Taxonomy
	RetryDelay time.Duration
	Log        logger.Logger
	Metrics    *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		loader:     opts.Loader,
		dispatcher: opts.Dispatcher,
		assembler:  opts.Assembler,
		collection: opts.Collection,
		index:      opts.Index,
		taxonomy:   opts.Taxonomy,
		retryDelay: opts.RetryDelay,
		log:        opts.Log,
		metrics:    opts.Metrics,
		now:        now,
	}
}

// Save extracts, assembles and appends one bookmark. Only a store failure
// makes it fail; a page that cannot be read yields a fallback record.
func (s *Service) Save(ctx context.Context, req Request) (*domain.Bookmark, error) {
	ex := s.Extract(ctx, req)
	b := s.assembler.Assemble(ctx, ex, s.now())

	if err := s.collection.Append(ctx, b); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	s.index.Add(b)
	s.metrics.ObserveSaved(string(b.Source))

	s.log.Info("bookmark saved",
		logger.String("id", b.ID),
		logger.String("source", string(b.Source)),
		logger.String("topic", b.Topic),
		logger.String("url", b.URL),
	)
	return b, nil
}

// Import assembles pre-extracted links and appends them in one write.
// Links whose URL is already in the collection are skipped. Records get
// consecutive millisecond timestamps so their ids stay distinct. It returns
// the appended records.
func (s *Service) Import(ctx context.Context, links []domain.Extraction) ([]*domain.Bookmark, error) {
	existing, err := s.collection.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("import bookmarks: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(links))
	for _, b := range existing {
		seen[b.URL] = true
	}

	at := s.now()
	added := make([]*domain.Bookmark, 0, len(links))
	for _, ex := range links {
		if seen[ex.URL] {
			continue
		}
		seen[ex.URL] = true
		if ex.Source == "" {
			ex.Source = s.dispatcher.Select(ex.URL)
		}
		added = append(added, s.assembler.Assemble(ctx, ex, at.Add(time.Duration(len(added))*time.Millisecond)))
	}

	if err := s.collection.AppendMany(ctx, added); err != nil {
		return nil, fmt.Errorf("import bookmarks: %w", err)
	}
	for _, b := range added {
		s.index.Add(b)
		s.metrics.ObserveSaved(string(b.Source))
	}

	s.log.Info("bookmarks imported",
		logger.Int("added", len(added)),
		logger.Int("skipped", len(links)-len(added)),
	)
	return added, nil
}

// Extract runs the load and extraction stages only.
func (s *Service) Extract(ctx context.Context, req Request) domain.Extraction {
	doc, err := s.load(ctx, req)
	if err != nil {
		s.log.Warn("page unreadable, using fallback record",
			logger.String("url", req.URL),
			logger.Error(err),
		)
		s.metrics.ObserveFallbackRecord()
		return s.fallback(req)
	}

	in := extract.PageLevel()
	if req.Target != "" {
		in = extract.Scoped(doc.Target(req.Target))
	}
	return s.dispatcher.Extract(doc, in)
}

// load parses the captured page, or fetches it with a single retry when the
// first attempt reports the page as not ready.
func (s *Service) load(ctx context.Context, req Request) (*page.Document, error) {
	if req.HTML != "" {
		return page.ParseString(req.HTML, req.URL)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("no page loader configured")
	}

	doc, err := s.loader.Fetch(ctx, req.URL)
	if err == nil || !errors.Is(err, page.ErrNotReady) {
		return doc, err
	}

	s.metrics.ObservePageRetry()
	s.log.Debug("page not ready, retrying",
		logger.String("url", req.URL),
		logger.Duration("delay", s.retryDelay),
		logger.Error(err),
	)

	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return s.loader.Fetch(ctx, req.URL)
}

func (s *Service) fallback(req Request) domain.Extraction {
	title := req.Title
	if title == "" {
		title = req.URL
	}
	return domain.Extraction{
		URL:          req.URL,
		Title:        title,
		Content:      FallbackContent,
		Author:       fallbackAuthor,
		Source:       s.dispatcher.Select(req.URL),
		ThumbnailURL: req.Favicon,
	}
}

// UpdateTopic retags a bookmark. Absent ids are not an error.
func (s *Service) UpdateTopic(ctx context.Context, id, topic string) error {
	if !s.taxonomy.Has(topic) {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	found, err := s.collection.UpdateTopic(ctx, id, topic)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	if found {
		s.index.SetTopic(id, topic)
	}
	return nil
}

// Remove deletes a bookmark. Absent ids are not an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	found, err := s.collection.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	if found {
		s.index.Delete(id)
	}
	return nil
}

// List filters the replica.
func (s *Service) List(f domain.Filter) []*domain.Bookmark {
	return domain.Query(s.index.All(), f)
}

// Grouped filters the replica and groups the result by topic.
func (s *Service) Grouped(f domain.Filter) []domain.TopicGroup {
	return domain.GroupByTopic(s.List(f), s.taxonomy)
}

// Topics returns the taxonomy labels in declared order.
func (s *Service) Topics() []string {
	return s.taxonomy.Labels()
}
