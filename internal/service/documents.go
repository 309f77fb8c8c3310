package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

type DocumentService struct {
	store DocumentStore
	log   logger.Logger
}

func NewDocumentService(store DocumentStore, log logger.Logger) *DocumentService {
	return &DocumentService{store: store, log: log}
}

// Create upserts by title and returns the stored row.
func (s *DocumentService) Create(ctx context.Context, in domain.DocumentInput) (*domain.Document, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	id, err := s.store.WriteDocument(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.store.GetDocument(ctx, id)
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// List returns one window of uid's documents, or everyone's when uid is 0,
// and the total they are drawn from.
func (s *DocumentService) List(ctx context.Context, uid int64, w Window) ([]*domain.Document, int, error) {
	w = w.Normalize()
	docs, err := s.store.ListDocuments(ctx, uid, w.Limit, w.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountDocuments(ctx, uid)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Update merges p onto the stored document.
func (s *DocumentService) Update(ctx context.Context, id int64, p domain.DocumentPatch) (*domain.Document, error) {
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	cur, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := p.Merge(cur.ToInput())
	if err := domain.Validate(merged); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDocument(ctx, id, merged); err != nil {
		return nil, err
	}
	return s.store.GetDocument(ctx, id)
}

func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteDocument(ctx, id)
}

func (s *DocumentService) Search(ctx context.Context, keyword string, uid int64, w Window) ([]*domain.Document, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domain.NewValidationError("keyword", "field required")
	}
	w = w.Normalize()
	return s.store.SearchDocuments(ctx, keyword, uid, w.Limit, w.Offset)
}

func (s *DocumentService) ByTag(ctx context.Context, tag string, uid int64, w Window) ([]*domain.Document, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, domain.NewValidationError("tag", "field required")
	}
	w = w.Normalize()
	return s.store.DocumentsByTag(ctx, tag, uid, w.Limit, w.Offset)
}
