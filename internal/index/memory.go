package index

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

// MemoryIndex keeps bookmarks and the last stats snapshot in process memory.
// It backs the "memory" bookmark backend and the service tests. Nothing
// survives a restart.
type MemoryIndex struct {
	mu        sync.RWMutex
	order     []string                    // IDs in insertion order
	bookmarks map[string]*domain.Bookmark // ID -> Bookmark
	stats     *domain.Stats
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		bookmarks: make(map[string]*domain.Bookmark),
	}
}

// List returns copies of every bookmark in insertion order.
func (idx *MemoryIndex) List(_ context.Context) ([]*domain.Bookmark, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Bookmark, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.bookmarks[id].Clone())
	}
	return out, nil
}

// Get returns a copy of the bookmark or domain.ErrNotFound.
func (idx *MemoryIndex) Get(_ context.Context, id string) (*domain.Bookmark, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	b, ok := idx.bookmarks[id]
	if !ok {
		return nil, domain.NotFound("bookmark", id)
	}
	return b.Clone(), nil
}

// Insert appends a new bookmark.
func (idx *MemoryIndex) Insert(ctx context.Context, b *domain.Bookmark) error {
	return idx.InsertMany(ctx, []*domain.Bookmark{b})
}

// InsertMany appends bs in order. A known or repeated ID rejects the whole
// batch with domain.ErrConflict.
func (idx *MemoryIndex) InsertMany(_ context.Context, bs []*domain.Bookmark) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	batch := make(map[string]bool, len(bs))
	for _, b := range bs {
		if _, ok := idx.bookmarks[b.ID]; ok || batch[b.ID] {
			return domain.Conflict("bookmark", b.ID)
		}
		batch[b.ID] = true
	}
	for _, b := range bs {
		idx.order = append(idx.order, b.ID)
		idx.bookmarks[b.ID] = b.Clone()
	}
	return nil
}

// Modify applies fn to a copy under the write lock and stores the copy
// only when fn succeeds.
func (idx *MemoryIndex) Modify(_ context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur, ok := idx.bookmarks[id]
	if !ok {
		return nil, domain.NotFound("bookmark", id)
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	idx.bookmarks[id] = next
	return next.Clone(), nil
}

// Delete removes a bookmark.
func (idx *MemoryIndex) Delete(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.bookmarks[id]; !ok {
		return domain.NotFound("bookmark", id)
	}
	delete(idx.bookmarks, id)
	for i, v := range idx.order {
		if v == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Snapshot methods
// ─────────────────────────────────────────────────────────────────

// SaveStats keeps the snapshot.
func (idx *MemoryIndex) SaveStats(_ context.Context, s domain.Stats) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.stats = &s
	return nil
}

// LoadStats returns the last snapshot; ok is false when none was saved.
func (idx *MemoryIndex) LoadStats(_ context.Context) (domain.Stats, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.stats == nil {
		return domain.Stats{}, false, nil
	}
	return *idx.stats, true, nil
}

// Ping always succeeds.
func (idx *MemoryIndex) Ping(_ context.Context) error { return nil }
