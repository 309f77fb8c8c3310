package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
)

// BookmarkService owns bookmark CRUD. Every successful mutation is followed
// by a synchronous stats regeneration.
type BookmarkService struct {
	repo  BookmarkRepository
	stats *StatsService
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

type BookmarkOption func(*BookmarkService)

// WithIDs replaces uuid.NewString, for deterministic tests.
func WithIDs(gen func() string) BookmarkOption {
	return func(s *BookmarkService) { s.newID = gen }
}

func WithBookmarkClock(now func() time.Time) BookmarkOption {
	return func(s *BookmarkService) { s.now = now }
}

func NewBookmarkService(repo BookmarkRepository, stats *StatsService, log logger.Logger, opts ...BookmarkOption) *BookmarkService {
	s := &BookmarkService{
		repo:  repo,
		stats: stats,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List filters, sorts and pages the whole collection. A storage failure is
// returned, never turned into an empty page.
func (s *BookmarkService) List(ctx context.Context, q domain.Query) (domain.Page, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return domain.Page{}, fmt.Errorf("list bookmarks: %w", err)
	}
	return domain.Run(all, q), nil
}

func (s *BookmarkService) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	return s.repo.Get(ctx, id)
}

func (s *BookmarkService) Create(ctx context.Context, in domain.BookmarkInput, userAgent string) (*domain.Bookmark, error) {
	b, err := s.Prepare(in, userAgent)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	metrics.BookmarkMutations.WithLabelValues("create").Inc()
	s.refresh(ctx, "create")
	return b, nil
}

// Prepare validates in and builds the record Create would store, without
// storing it.
func (s *BookmarkService) Prepare(in domain.BookmarkInput, userAgent string) (*domain.Bookmark, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return domain.NewBookmark(s.newID(), in, userAgent, s.now().UTC()), nil
}

// CreateBatch stores records built by Prepare in one write and regenerates
// stats once.
func (s *BookmarkService) CreateBatch(ctx context.Context, bs []*domain.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}
	if err := s.repo.InsertMany(ctx, bs); err != nil {
		return err
	}

	metrics.BookmarkMutations.WithLabelValues("create").Add(float64(len(bs)))
	s.refresh(ctx, "import")
	return nil
}

// Update applies p inside the repository's Modify, so concurrent patches to
// different fields are all kept.
func (s *BookmarkService) Update(ctx context.Context, id string, p domain.BookmarkPatch) (*domain.Bookmark, error) {
	if err := domain.Validate(p); err != nil {
		return nil, err
	}

	b, err := s.repo.Modify(ctx, id, func(b *domain.Bookmark) error {
		b.Apply(p, s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookmarkMutations.WithLabelValues("update").Inc()
	s.refresh(ctx, "update")
	return b, nil
}

func (s *BookmarkService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.BookmarkMutations.WithLabelValues("delete").Inc()
	s.refresh(ctx, "delete")
	return nil
}

// refresh regenerates stats after a write. The write already succeeded, so
// a failure here is only logged; the snapshot catches up on the next write
// or an explicit refresh.
func (s *BookmarkService) refresh(ctx context.Context, op string) {
	if s.stats == nil {
		return
	}
	if _, err := s.stats.Generate(ctx); err != nil {
		s.log.Error("stats regeneration failed",
			logger.String("after", op),
			logger.Error(err))
	}
}
