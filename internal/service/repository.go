package service

import (
	"context"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

// BookmarkRepository is implemented by every bookmark backend: the JSON
// file store, the in-memory index, bbolt and the SQL bookmarks table.
//
// Insert and InsertMany fail with domain.ErrConflict when an id is already
// stored; InsertMany writes all records or none. Modify runs fn on the
// stored record and saves the result without letting another write in
// between; an error from fn leaves the record untouched.
type BookmarkRepository interface {
	List(ctx context.Context) ([]*domain.Bookmark, error)
	Get(ctx context.Context, id string) (*domain.Bookmark, error)
	Insert(ctx context.Context, b *domain.Bookmark) error
	InsertMany(ctx context.Context, bs []*domain.Bookmark) error
	Modify(ctx context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// SnapshotStore persists the derived stats. ok is false when nothing was
// saved yet.
type SnapshotStore interface {
	SaveStats(ctx context.Context, s domain.Stats) error
	LoadStats(ctx context.Context) (s domain.Stats, ok bool, err error)
}

type DocumentStore interface {
	WriteDocument(ctx context.Context, in domain.DocumentInput) (int64, error)
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)
	UpdateDocument(ctx context.Context, id int64, in domain.DocumentInput) error
	DeleteDocument(ctx context.Context, id int64) error
	ListDocuments(ctx context.Context, uid int64, limit, offset int) ([]*domain.Document, error)
	SearchDocuments(ctx context.Context, keyword string, uid int64, limit, offset int) ([]*domain.Document, error)
	DocumentsByTag(ctx context.Context, tag string, uid int64, limit, offset int) ([]*domain.Document, error)
	CountDocuments(ctx context.Context, uid int64) (int, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, in domain.CategoryInput) (int64, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, uid int64) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id, uid int64, p domain.CategoryPatch) error
	DeleteCategory(ctx context.Context, id, uid int64) error
	AddDocument(ctx context.Context, categoryID, docID int64) (bool, error)
	RemoveDocument(ctx context.Context, categoryID, docID int64) error
	CategoryDocuments(ctx context.Context, categoryID int64, limit, offset int) ([]*domain.Document, error)
	CountCategoryDocuments(ctx context.Context, categoryID int64) (int, error)
}

// Window is a limit/offset pair as sent by the document endpoints.
type Window struct {
	Limit  int
	Offset int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize clamps the window the same way bookmark pages are clamped.
func (w Window) Normalize() Window {
	switch {
	case w.Limit < 1:
		w.Limit = DefaultLimit
	case w.Limit > MaxLimit:
		w.Limit = MaxLimit
	}
	if w.Offset < 0 {
		w.Offset = 0
	}
	return w
}
