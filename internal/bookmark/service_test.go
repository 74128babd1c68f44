package bookmark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/collection"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/extract"
	"github.com/MrSnakeDoc/shelf/internal/index"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/page"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// scriptedLoader answers Fetch calls from a queue of errors; a nil entry
// serves html.
type scriptedLoader struct {
	mu    sync.Mutex
	html  string
	errs  []error
	calls int
}

func (l *scriptedLoader) Fetch(_ context.Context, url string) (*page.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.calls < len(l.errs) {
		err = l.errs[l.calls]
	}
	l.calls++
	if err != nil {
		return nil, err
	}
	return page.ParseString(l.html, url)
}

type fixture struct {
	svc   *Service
	kv    *store.Memory
	col   *collection.Collection
	idx   *index.MemoryIndex
	clock int64
}

func newFixture(t *testing.T, loader PageLoader) *fixture {
	t.Helper()
	f := &fixture{kv: store.NewMemory(), idx: index.NewMemoryIndex(), clock: 1_700_000_000_000}
	f.col = collection.New(f.kv, "", nil)
	tax := domain.DefaultTaxonomy()
	f.svc = NewService(Options{
		Loader:     loader,
		Dispatcher: extract.NewDispatcher(logger.Nop(), nil),
		Assembler:  NewAssembler(tax, nil),
		Collection: f.col,
		Index:      f.idx,
		Taxonomy:   tax,
		RetryDelay: 10 * time.Millisecond,
		Log:        logger.Nop(),
		Now: func() time.Time {
			f.clock++
			return time.UnixMilli(f.clock)
		},
	})
	return f
}

const articleHTML = `<html><head><title>Release notes</title></head><body><article>New GPT model shipped</article></body></html>`

func TestSaveFromCapturedHTML(t *testing.T) {
	f := newFixture(t, nil)

	b, err := f.svc.Save(context.Background(), Request{URL: "https://blog.example.com/r", HTML: articleHTML})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if b.Title != "Release notes" || b.Topic != "AI/ML" || b.Source != domain.SourceArticle {
		t.Errorf("Save() = %+v", b)
	}

	stored, _ := f.col.List(context.Background())
	if len(stored) != 1 || stored[0].ID != b.ID {
		t.Errorf("collection = %v, want the saved record", stored)
	}
	if f.idx.Count() != 1 {
		t.Errorf("replica count = %d, want 1", f.idx.Count())
	}
}

func TestSaveScopedTarget(t *testing.T) {
	f := newFixture(t, nil)
	html := `<html><head><title>Home / X</title></head><body>
<article role="article"><div data-testid="tweetText">first</div></article>
<article role="article"><div data-testid="tweetText" id="pick">Hello #AI world</div></article></body></html>`

	b, err := f.svc.Save(context.Background(), Request{URL: "https://x.com/home", HTML: html, Target: "#pick"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if b.Content != "Hello #AI world..." {
		t.Errorf("Content = %q, want the targeted post", b.Content)
	}
	if b.Author != "" {
		t.Errorf("Author = %q, want empty", b.Author)
	}
}

func TestSaveRetriesOnceWhenNotReady(t *testing.T) {
	loader := &scriptedLoader{html: articleHTML, errs: []error{page.ErrNotReady}}
	f := newFixture(t, loader)

	b, err := f.svc.Save(context.Background(), Request{URL: "https://blog.example.com/r"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
	if b.Content != "New GPT model shipped" {
		t.Errorf("Content = %q, want extracted text", b.Content)
	}
}

func TestSaveFallbackRecord(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
	}{
		{name: "not ready twice", errs: []error{page.ErrNotReady, page.ErrNotReady}, wantCalls: 2},
		{name: "rejected is not retried", errs: []error{fmt.Errorf("%w: status 403", page.ErrRejected)}, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &scriptedLoader{html: articleHTML, errs: tt.errs}
			f := newFixture(t, loader)

			b, err := f.svc.Save(context.Background(), Request{
				URL:     "https://www.youtube.com/watch?v=1",
				Title:   "Some video",
				Favicon: "data:image/x-icon;base64,AA==",
			})
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if loader.calls != tt.wantCalls {
				t.Errorf("loader calls = %d, want %d", loader.calls, tt.wantCalls)
			}
			if b.Content != FallbackContent || b.Author != "Unknown" {
				t.Errorf("fallback record = %+v", b)
			}
			if b.Source != domain.SourceVideo || b.Title != "Some video" {
				t.Errorf("fallback source/title = %q/%q", b.Source, b.Title)
			}
			if b.ThumbnailURL != "data:image/x-icon;base64,AA==" {
				t.Errorf("ThumbnailURL = %q, want favicon", b.ThumbnailURL)
			}
		})
	}
}

func TestSaveRetryHonoursContext(t *testing.T) {
	loader := &scriptedLoader{html: articleHTML, errs: []error{page.ErrNotReady}}
	f := newFixture(t, loader)
	f.svc.retryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	b, err := f.svc.Save(ctx, Request{URL: "https://example.com", Title: "t"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if b.Content != FallbackContent {
		t.Errorf("Content = %q, want fallback after cancelled retry", b.Content)
	}
}

func TestSaveStoreUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.kv.Fail(errors.New("redis down"))

	_, err := f.svc.Save(context.Background(), Request{URL: "https://example.com", HTML: articleHTML})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Save() error = %v, want ErrUnavailable", err)
	}
	if f.idx.Count() != 0 {
		t.Error("replica patched although the record was not saved")
	}
}

func TestUpdateTopicAndRemove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a, _ := f.svc.Save(ctx, Request{URL: "https://example.com/a", HTML: articleHTML})
	b, _ := f.svc.Save(ctx, Request{URL: "https://example.com/b", HTML: articleHTML})

	if err := f.svc.UpdateTopic(ctx, a.ID, "Health"); err != nil {
		t.Fatalf("UpdateTopic() error = %v", err)
	}
	if err := f.svc.UpdateTopic(ctx, a.ID, "Gardening"); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("UpdateTopic(unknown) error = %v, want ErrUnknownTopic", err)
	}
	if err := f.svc.UpdateTopic(ctx, "404", "Health"); err != nil {
		t.Errorf("UpdateTopic(absent) error = %v, want nil", err)
	}

	got := f.svc.List(domain.Filter{Topic: "Health"})
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("List(Health) = %v, want [%s]", got, a.ID)
	}

	if err := f.svc.Remove(ctx, b.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := f.svc.Remove(ctx, "404"); err != nil {
		t.Errorf("Remove(absent) error = %v", err)
	}
	if all := f.svc.List(domain.Filter{}); len(all) != 1 {
		t.Errorf("List() after remove = %d records, want 1", len(all))
	}

	groups := f.svc.Grouped(domain.Filter{})
	if len(groups) != 1 || groups[0].Topic != "Health" {
		t.Errorf("Grouped() = %+v", groups)
	}
	if topics := f.svc.Topics(); len(topics) != 7 || topics[6] != domain.CatchAllTopic {
		t.Errorf("Topics() = %v", topics)
	}
}

func TestImport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	existing, _ := f.svc.Save(ctx, Request{URL: "https://blog.example.com/r", HTML: articleHTML})

	links := []domain.Extraction{
		{URL: "https://blog.example.com/r", Title: "Already saved"},
		{URL: "https://www.youtube.com/watch?v=abc", Title: "Talk", Content: "A deep learning lecture"},
		{URL: "https://example.com/gym", Title: "Fitness plan"},
		{URL: "https://example.com/gym", Title: "Duplicate in batch"},
	}
	added, err := f.svc.Import(ctx, links)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("Import() added %d records, want 2", len(added))
	}

	if added[0].Source != domain.SourceVideo || added[0].Topic != "AI/ML" {
		t.Errorf("first import = %+v, want YouTube / AI/ML", added[0])
	}
	if added[1].Source != domain.SourceArticle || added[1].Topic != "Health" {
		t.Errorf("second import = %+v, want Article / Health", added[1])
	}
	if added[0].ID == added[1].ID || added[0].ID == existing.ID {
		t.Errorf("ids %s, %s collide", added[0].ID, added[1].ID)
	}

	stored, _ := f.col.List(ctx)
	if len(stored) != 3 {
		t.Errorf("collection holds %d records, want 3", len(stored))
	}
	if f.idx.Count() != 3 {
		t.Errorf("replica count = %d, want 3", f.idx.Count())
	}
}

func TestImportStoreUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.kv.Fail(errors.New("redis down"))

	_, err := f.svc.Import(context.Background(), []domain.Extraction{{URL: "https://example.com", Title: "x"}})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Import() error = %v, want ErrUnavailable", err)
	}
}
