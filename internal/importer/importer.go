// Package importer bulk-loads bookmarks from external exports.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
)

// Outcome labels for the imported records metric.
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Lister returns every stored bookmark.
type Lister interface {
	List(ctx context.Context) ([]*domain.Bookmark, error)
}

// Creator validates inputs one by one and stores the accepted records in a
// single batch.
type Creator interface {
	Prepare(in domain.BookmarkInput, userAgent string) (*domain.Bookmark, error)
	CreateBatch(ctx context.Context, bs []*domain.Bookmark) error
}

type Result struct {
	Source   string `json:"source"`
	Seen     int    `json:"seen"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

type Importer struct {
	existing Lister
	create   Creator
	log      logger.Logger
	dryRun   bool
}

func New(existing Lister, create Creator, log logger.Logger, dryRun bool) *Importer {
	return &Importer{existing: existing, create: create, log: log, dryRun: dryRun}
}

// Import creates every input whose URL is not stored yet. Duplicate URLs
// inside the batch are imported once. Records failing validation are
// counted and logged. Accepted records are written in one batch; a storage
// error aborts the run and nothing is imported.
func (im *Importer) Import(ctx context.Context, source string, inputs []domain.BookmarkInput) (Result, error) {
	res := Result{Source: source}

	stored, err := im.existing.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list existing bookmarks: %w", err)
	}
	seen := make(map[string]bool, len(stored)+len(inputs))
	for _, b := range stored {
		seen[urlKey(b.URL)] = true
	}

	ua := "notedocs-import/" + source
	batch := make([]*domain.Bookmark, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Seen++

		key := urlKey(in.URL)
		if key != "" && seen[key] {
			res.Skipped++
			metrics.ImportedRecords.WithLabelValues(source, OutcomeSkipped).Inc()
			continue
		}

		b, err := im.create.Prepare(in, ua)
		if err != nil {
			if !errors.Is(err, domain.ErrValidation) {
				return res, fmt.Errorf("import %q: %w", in.URL, err)
			}
			im.fail(&res, source, in, err)
			continue
		}
		seen[key] = true
		batch = append(batch, b)
	}

	if !im.dryRun {
		if err := im.create.CreateBatch(ctx, batch); err != nil {
			return res, fmt.Errorf("store %d bookmarks: %w", len(batch), err)
		}
	}
	res.Imported = len(batch)
	metrics.ImportedRecords.WithLabelValues(source, OutcomeImported).Add(float64(len(batch)))

	im.log.Info("import finished",
		logger.String("source", source),
		logger.Int("seen", res.Seen),
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped),
		logger.Int("failed", res.Failed),
		logger.Bool("dry_run", im.dryRun))
	return res, nil
}

func (im *Importer) fail(res *Result, source string, in domain.BookmarkInput, err error) {
	res.Failed++
	metrics.ImportedRecords.WithLabelValues(source, OutcomeFailed).Inc()
	im.log.Warn("import record rejected",
		logger.String("url", in.URL),
		logger.String("title", in.Title),
		logger.Error(err))
}

// urlKey compares URLs case-insensitively and ignores a trailing slash.
func urlKey(u string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(u)), "/")
}
