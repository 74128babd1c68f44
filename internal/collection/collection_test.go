package collection

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// countingKV records writes on top of an in-memory store.
type countingKV struct {
	*store.Memory
	sets int
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.Memory.Set(ctx, key, value)
}

func bookmark(id, topic string) *domain.Bookmark {
	return &domain.Bookmark{
		ID:           id,
		Date:         "2025-03-01T12:00:00.000Z",
		URL:          "https://example.com/" + id,
		Title:        "Title " + id,
		Content:      "Content " + id,
		Author:       "Author " + id,
		Source:       domain.SourceArticle,
		ThumbnailURL: "https://example.com/" + id + ".png",
		Topic:        topic,
	}
}

func seeded(t *testing.T, ids ...string) (*Collection, *countingKV) {
	t.Helper()
	kv := &countingKV{Memory: store.NewMemory()}
	c := New(kv, "", nil)
	for _, id := range ids {
		if err := c.Append(context.Background(), bookmark(id, "Other")); err != nil {
			t.Fatalf("Append(%s) error = %v", id, err)
		}
	}
	kv.sets = 0
	return c, kv
}

func listIDs(t *testing.T, c *Collection) []string {
	t.Helper()
	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestListEmpty(t *testing.T) {
	c, _ := seeded(t)
	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", list)
	}
	if c.Key() != DefaultKey {
		t.Errorf("Key() = %q, want %q", c.Key(), DefaultKey)
	}
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	c, _ := seeded(t, "3", "1", "2")
	if got := listIDs(t, c); !reflect.DeepEqual(got, []string{"3", "1", "2"}) {
		t.Errorf("List() ids = %v, want [3 1 2]", got)
	}
}

func TestAppendMany(t *testing.T) {
	c, kv := seeded(t, "1")

	if err := c.AppendMany(context.Background(), nil); err != nil {
		t.Fatalf("AppendMany(nil) error = %v", err)
	}
	if kv.sets != 0 {
		t.Errorf("AppendMany(nil) wrote %d times, want 0", kv.sets)
	}

	if err := c.AppendMany(context.Background(), []*domain.Bookmark{bookmark("2", "Other"), bookmark("3", "Other")}); err != nil {
		t.Fatalf("AppendMany() error = %v", err)
	}
	if kv.sets != 1 {
		t.Errorf("AppendMany() wrote %d times, want 1", kv.sets)
	}
	if got := listIDs(t, c); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("List() ids = %v, want [1 2 3]", got)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c, kv := seeded(t, "1", "2")
	before, _ := c.List(context.Background())

	found, err := c.Remove(context.Background(), "404")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if found {
		t.Error("Remove() found = true for absent id")
	}
	if kv.sets != 0 {
		t.Errorf("Remove() wrote %d times, want 0", kv.sets)
	}

	after, _ := c.List(context.Background())
	if !reflect.DeepEqual(before, after) {
		t.Errorf("collection changed: %v -> %v", before, after)
	}
}

func TestRemove(t *testing.T) {
	c, _ := seeded(t, "1", "2", "3")

	found, err := c.Remove(context.Background(), "2")
	if err != nil || !found {
		t.Fatalf("Remove() = %v, %v", found, err)
	}
	if got := listIDs(t, c); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("List() ids = %v, want [1 3]", got)
	}
}

func TestUpdateTopic(t *testing.T) {
	c, _ := seeded(t, "1", "2")
	ctx := context.Background()
	before, _ := c.List(ctx)

	found, err := c.UpdateTopic(ctx, "2", "Health")
	if err != nil || !found {
		t.Fatalf("UpdateTopic() = %v, %v", found, err)
	}

	after, _ := c.List(ctx)
	if after[1].Topic != "Health" {
		t.Errorf("topic = %q, want Health", after[1].Topic)
	}

	want := *before[1]
	want.Topic = "Health"
	if *after[1] != want {
		t.Errorf("UpdateTopic() changed other fields:\n got %+v\nwant %+v", *after[1], want)
	}
	if !reflect.DeepEqual(after[0], before[0]) {
		t.Errorf("UpdateTopic() touched another record: %+v", after[0])
	}
}

func TestUpdateTopicAbsentIsNoop(t *testing.T) {
	c, kv := seeded(t, "1")
	found, err := c.UpdateTopic(context.Background(), "404", "Health")
	if err != nil || found {
		t.Fatalf("UpdateTopic() = %v, %v; want false, nil", found, err)
	}
	if kv.sets != 0 {
		t.Errorf("UpdateTopic() wrote %d times, want 0", kv.sets)
	}
}

func TestFind(t *testing.T) {
	c, _ := seeded(t, "1", "2")
	b, ok, err := c.Find(context.Background(), "2")
	if err != nil || !ok || b.ID != "2" {
		t.Errorf("Find(2) = %v, %v, %v", b, ok, err)
	}
	if _, ok, _ := c.Find(context.Background(), "9"); ok {
		t.Error("Find(9) ok = true")
	}
}

func TestStoreUnavailable(t *testing.T) {
	c, kv := seeded(t, "1")
	kv.Fail(errors.New("connection refused"))
	ctx := context.Background()

	if _, err := c.List(ctx); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
	if err := c.Append(ctx, bookmark("2", "Other")); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Append() error = %v, want ErrUnavailable", err)
	}
	if _, err := c.Remove(ctx, "1"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Remove() error = %v, want ErrUnavailable", err)
	}
	if _, err := c.UpdateTopic(ctx, "1", "Health"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("UpdateTopic() error = %v, want ErrUnavailable", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Ping() error = %v, want ErrUnavailable", err)
	}
}

func TestCorruptValue(t *testing.T) {
	kv := store.NewMemory()
	_ = kv.Set(context.Background(), DefaultKey, []byte("{not a list"))

	if _, err := New(kv, "", nil).List(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Errorf("List() error = %v, want ErrCorrupt", err)
	}
}

func TestNullEntriesAreDropped(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	_ = kv.Set(ctx, DefaultKey, []byte(`[null,{"id":"1","topic":"Other"},null]`))
	c := New(kv, "", nil)

	if got := listIDs(t, c); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("List() ids = %v, want [1]", got)
	}
	if found, err := c.UpdateTopic(ctx, "404", "Health"); err != nil || found {
		t.Errorf("UpdateTopic(absent) = %v, %v; want false, nil", found, err)
	}
	if found, err := c.Remove(ctx, "1"); err != nil || !found {
		t.Fatalf("Remove() = %v, %v", found, err)
	}
	if got := listIDs(t, c); len(got) != 0 {
		t.Errorf("List() ids = %v, want empty", got)
	}
}

func TestListReadsExtensionThumbnailKey(t *testing.T) {
	kv := store.NewMemory()
	_ = kv.Set(context.Background(), DefaultKey, []byte(`[
{"id":"1","url":"https://x.com/a","avatarUrl":"https://pbs.twimg.com/a.jpg","topic":"Other"},
{"id":"2","thumbnailUrl":"data:image/png;base64,AA==","avatarUrl":"https://old.example/b.jpg","topic":"Other"}]`))

	list, err := New(kv, "", nil).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list[0].ThumbnailURL != "https://pbs.twimg.com/a.jpg" {
		t.Errorf("ThumbnailURL = %q, want the avatarUrl value", list[0].ThumbnailURL)
	}
	if list[1].ThumbnailURL != "data:image/png;base64,AA==" {
		t.Errorf("ThumbnailURL = %q, want thumbnailUrl to win", list[1].ThumbnailURL)
	}
}
