package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// MemoryIndex is the in-memory read replica of the bookmark collection.
// It keeps the stored order and is patched after each successful mutation,
// then fully replaced by the syncer.
//
// Records are never mutated in place: a retag swaps in a copy, so slices
// handed out by All stay valid.
//
// Every patch bumps a generation counter. A full replace built from a
// snapshot taken before a patch is refused by ReplaceIf, so a sync cannot
// drop a record saved while it was reading the store.
type MemoryIndex struct {
	mu         sync.RWMutex
	bookmarks  []*domain.Bookmark
	generation uint64
	lastReload time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		bookmarks: []*domain.Bookmark{},
	}
}

// Replace swaps the whole replica for bookmarks.
func (idx *MemoryIndex) Replace(bookmarks []*domain.Bookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks = append(make([]*domain.Bookmark, 0, len(bookmarks)), bookmarks...)
	idx.lastReload = time.Now()
}

// Generation returns the patch counter, to be passed to ReplaceIf.
func (idx *MemoryIndex) Generation() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.generation
}

// ReplaceIf swaps the replica for bookmarks unless it was patched since gen
// was read. It reports whether the replica was replaced.
func (idx *MemoryIndex) ReplaceIf(gen uint64, bookmarks []*domain.Bookmark) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.generation != gen {
		return false
	}
	idx.bookmarks = append(make([]*domain.Bookmark, 0, len(bookmarks)), bookmarks...)
	idx.lastReload = time.Now()
	return true
}

// All returns the bookmarks in stored order.
func (idx *MemoryIndex) All() []*domain.Bookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append(make([]*domain.Bookmark, 0, len(idx.bookmarks)), idx.bookmarks...)
}

// Get retrieves a bookmark by ID
func (idx *MemoryIndex) Get(id string) (*domain.Bookmark, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if i := idx.position(id); i >= 0 {
		return idx.bookmarks[i], true
	}
	return nil, false
}

// Add appends a bookmark.
func (idx *MemoryIndex) Add(b *domain.Bookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks = append(idx.bookmarks, b)
	idx.generation++
}

// SetTopic retags a bookmark. Unknown ids are ignored.
func (idx *MemoryIndex) SetTopic(id, topic string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if i := idx.position(id); i >= 0 {
		retagged := *idx.bookmarks[i]
		retagged.Topic = topic
		idx.bookmarks[i] = &retagged
		idx.generation++
	}
}

// Delete removes a bookmark. Unknown ids are ignored.
func (idx *MemoryIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	i := idx.position(id)
	if i < 0 {
		return
	}
	next := make([]*domain.Bookmark, 0, len(idx.bookmarks)-1)
	next = append(next, idx.bookmarks[:i]...)
	idx.bookmarks = append(next, idx.bookmarks[i+1:]...)
	idx.generation++
}

// Count returns the number of bookmarks in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.bookmarks)
}

// LastReload returns the timestamp of the last full replace.
func (idx *MemoryIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

func (idx *MemoryIndex) position(id string) int {
	for i, b := range idx.bookmarks {
		if b != nil && b.ID == id {
			return i
		}
	}
	return -1
}
