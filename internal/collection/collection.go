// Package collection persists the bookmark list under a single store key.
//
// Every mutation reads the whole list, changes it in memory and writes it
// back. There is no locking: two concurrent mutations race and the later
// write wins, dropping the earlier change.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// DefaultKey is the store key holding the collection.
const DefaultKey = "shelf:bookmarks"

// ErrCorrupt is returned when the stored value is not a bookmark list.
var ErrCorrupt = errors.New("collection corrupt")

// Collection is the canonical bookmark list.
type Collection struct {
	kv      store.KV
	key     string
	metrics *metrics.Metrics
}

func New(kv store.KV, key string, m *metrics.Metrics) *Collection {
	if key == "" {
		key = DefaultKey
	}
	return &Collection{kv: kv, key: key, metrics: m}
}

// Key returns the store key of the collection.
func (c *Collection) Key() string { return c.key }

// List returns the bookmarks in stored order. An unset key is an empty list.
func (c *Collection) List(ctx context.Context) ([]*domain.Bookmark, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		c.metrics.ObserveStoreError("get")
		return nil, fmt.Errorf("load collection: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []*domain.Bookmark{}, nil
	}

	var list []*domain.Bookmark
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.key, err)
	}
	return compact(list), nil
}

// compact drops null entries, which carry no record.
func compact(list []*domain.Bookmark) []*domain.Bookmark {
	out := make([]*domain.Bookmark, 0, len(list))
	for _, b := range list {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *Collection) save(ctx context.Context, list []*domain.Bookmark) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := c.kv.Set(ctx, c.key, raw); err != nil {
		c.metrics.ObserveStoreError("set")
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

// Append adds b at the end of the list.
func (c *Collection) Append(ctx context.Context, b *domain.Bookmark) error {
	list, err := c.List(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, append(list, b))
}

// AppendMany adds bs at the end of the list in one write.
func (c *Collection) AppendMany(ctx context.Context, bs []*domain.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}
	list, err := c.List(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, append(list, bs...))
}

// Find returns the bookmark with the given id.
func (c *Collection) Find(ctx context.Context, id string) (*domain.Bookmark, bool, error) {
	list, err := c.List(ctx)
	if err != nil {
		return nil, false, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], true, nil
	}
	return nil, false, nil
}

// UpdateTopic retags the bookmark with the given id. It reports whether the
// bookmark exists; an absent id writes nothing.
func (c *Collection) UpdateTopic(ctx context.Context, id, topic string) (bool, error) {
	list, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return false, nil
	}
	list[i].Topic = topic
	if err := c.save(ctx, list); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the bookmark with the given id. It reports whether the
// bookmark existed; an absent id writes nothing.
func (c *Collection) Remove(ctx context.Context, id string) (bool, error) {
	list, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return false, nil
	}
	list = append(list[:i], list[i+1:]...)
	if err := c.save(ctx, list); err != nil {
		return false, err
	}
	return true, nil
}

// Ping reports whether the backing store is reachable.
func (c *Collection) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

func indexOf(list []*domain.Bookmark, id string) int {
	for i, b := range list {
		if b != nil && b.ID == id {
			return i
		}
	}
	return -1
}
