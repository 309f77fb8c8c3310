package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

const (
	BookmarksFile = "bookmarks.json"
	StatsFile     = "stats.json"
	BackupsDir    = "backups"
)

// Store persists bookmarks and the stats snapshot as two pretty-printed JSON
// files. Every read-modify-write, including Modify, runs under one mutex.
type Store struct {
	mu      sync.Mutex
	dir     string
	backups bool
	now     func() time.Time
}

type Option func(*Store)

// WithBackups copies each file to <dir>/backups before it is overwritten.
func WithBackups(enabled bool) Option {
	return func(s *Store) { s.backups = enabled }
}

// WithClock overrides time.Now for backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// BackupDir is where overwritten files are copied.
func (s *Store) BackupDir() string { return filepath.Join(s.dir, BackupsDir) }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) backupTarget() string {
	if !s.backups {
		return ""
	}
	return s.BackupDir()
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

func (s *Store) load() ([]*domain.Bookmark, error) {
	var all []*domain.Bookmark
	if _, err := readJSON(s.path(BookmarksFile), &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = []*domain.Bookmark{}
	}
	return all, nil
}

func (s *Store) save(all []*domain.Bookmark) error {
	return writeJSON(s.path(BookmarksFile), all, s.backupTarget(), s.now())
}

func (s *Store) List(_ context.Context) ([]*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *Store) Get(_ context.Context, id string) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domain.NotFound("bookmark", id)
}

func (s *Store) Insert(ctx context.Context, b *domain.Bookmark) error {
	return s.InsertMany(ctx, []*domain.Bookmark{b})
}

// InsertMany appends bs with a single file write.
func (s *Store) InsertMany(_ context.Context, bs []*domain.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(all)+len(bs))
	for _, b := range all {
		ids[b.ID] = true
	}
	for _, b := range bs {
		if ids[b.ID] {
			return domain.Conflict("bookmark", b.ID)
		}
		ids[b.ID] = true
	}
	return s.save(append(all, bs...))
}

func (s *Store) Modify(_ context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.ID != id {
			continue
		}
		if err := fn(b); err != nil {
			return nil, err
		}
		if err := s.save(all); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, domain.NotFound("bookmark", id)
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			return s.save(append(all[:i], all[i+1:]...))
		}
	}
	return domain.NotFound("bookmark", id)
}

// ─────────────────────────────────────────────────────────────────
// Stats snapshot
// ─────────────────────────────────────────────────────────────────

func (s *Store) SaveStats(_ context.Context, st domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.path(StatsFile), st, s.backupTarget(), s.now())
}

func (s *Store) LoadStats(_ context.Context) (domain.Stats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st domain.Stats
	ok, err := readJSON(s.path(StatsFile), &st)
	if err != nil || !ok {
		return domain.Stats{}, false, err
	}
	return st, true, nil
}

// Ping checks the data directory is still reachable.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}
