package service

import (
	"context"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// CategoryService scopes every operation to the owning uid. A category that
// exists but belongs to someone else is reported as not found.
type CategoryService struct {
	store CategoryStore
	log   logger.Logger
}

func NewCategoryService(store CategoryStore, log logger.Logger) *CategoryService {
	return &CategoryService{store: store, log: log}
}

func requireOwner(uid int64) error {
	if uid <= 0 {
		return domain.NewValidationError("uid", "field required")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	id, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.store.GetCategory(ctx, id)
}

// List returns uid's categories, newest first.
func (s *CategoryService) List(ctx context.Context, uid int64) ([]*domain.Category, error) {
	if err := requireOwner(uid); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, uid)
}

func (s *CategoryService) Update(ctx context.Context, id, uid int64, p domain.CategoryPatch) (*domain.Category, error) {
	if err := requireOwner(uid); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, domain.NewValidationError("body", "at least one of name, tags, icon is required")
	}
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, id, uid, p); err != nil {
		return nil, err
	}
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id, uid int64) error {
	if err := requireOwner(uid); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id, uid)
}

// owned loads the category and checks it belongs to uid.
func (s *CategoryService) owned(ctx context.Context, id, uid int64) (*domain.Category, error) {
	if err := requireOwner(uid); err != nil {
		return nil, err
	}
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UID != uid {
		s.log.Debug("category owner mismatch",
			logger.Int64("category_id", id),
			logger.Int64("uid", uid))
		return nil, domain.NotFound("category", id)
	}
	return c, nil
}

// AddDocument links docID to the category. Adding an existing link is a
// no-op success; added tells the two apart.
func (s *CategoryService) AddDocument(ctx context.Context, id, uid, docID int64) (added bool, err error) {
	if docID <= 0 {
		return false, domain.NewValidationError("doc_id", "field required")
	}
	if _, err := s.owned(ctx, id, uid); err != nil {
		return false, err
	}
	return s.store.AddDocument(ctx, id, docID)
}

func (s *CategoryService) RemoveDocument(ctx context.Context, id, uid, docID int64) error {
	if _, err := s.owned(ctx, id, uid); err != nil {
		return err
	}
	return s.store.RemoveDocument(ctx, id, docID)
}

// Documents returns one window of the category's documents and the total
// number of links.
func (s *CategoryService) Documents(ctx context.Context, id, uid int64, w Window) ([]*domain.Document, int, error) {
	if _, err := s.owned(ctx, id, uid); err != nil {
		return nil, 0, err
	}
	w = w.Normalize()
	docs, err := s.store.CategoryDocuments(ctx, id, w.Limit, w.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountCategoryDocuments(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (s *CategoryService) CountDocuments(ctx context.Context, id, uid int64) (int, error) {
	if _, err := s.owned(ctx, id, uid); err != nil {
		return 0, err
	}
	return s.store.CountCategoryDocuments(ctx, id)
}
