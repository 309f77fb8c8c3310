package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

const statsSnapshotName = "bookmarks"

// Bookmarks keeps bookmark records as JSON blobs. seq preserves insertion
// order, which is what the file backend gives.
type Bookmarks struct {
	s *Store
}

func (s *Store) Bookmarks() *Bookmarks { return &Bookmarks{s: s} }

func (b *Bookmarks) List(ctx context.Context) ([]*domain.Bookmark, error) {
	rows, err := b.s.db.QueryContext(ctx, `SELECT data FROM bookmarks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Bookmark{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		var bm domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bm); err != nil {
			return nil, fmt.Errorf("decode bookmark: %w", err)
		}
		out = append(out, &bm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}

func (b *Bookmarks) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	var raw string
	err := b.s.db.QueryRowContext(ctx, b.s.rebind(`SELECT data FROM bookmarks WHERE id = ?`), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("bookmark", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	var bm domain.Bookmark
	if err := json.Unmarshal([]byte(raw), &bm); err != nil {
		return nil, fmt.Errorf("decode bookmark: %w", err)
	}
	return &bm, nil
}

func (b *Bookmarks) Insert(ctx context.Context, bm *domain.Bookmark) error {
	return b.InsertMany(ctx, []*domain.Bookmark{bm})
}

// InsertMany inserts bs in one transaction.
func (b *Bookmarks) InsertMany(ctx context.Context, bs []*domain.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}
	return b.s.withTx(ctx, func(tx *sql.Tx) error {
		for _, bm := range bs {
			raw, err := json.Marshal(bm)
			if err != nil {
				return fmt.Errorf("encode bookmark: %w", err)
			}
			_, err = b.s.exec(ctx, tx, `INSERT INTO bookmarks (id, data) VALUES (?, ?)`, bm.ID, string(raw))
			if isUniqueViolation(err) {
				return domain.Conflict("bookmark", bm.ID)
			}
			if err != nil {
				return fmt.Errorf("insert bookmark: %w", err)
			}
		}
		return nil
	})
}

// Modify locks the row for the length of the transaction. sqlite runs on a
// single connection, so its transactions are already serialized.
func (b *Bookmarks) Modify(ctx context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	query := `SELECT data FROM bookmarks WHERE id = ?`
	if b.s.dialect != SQLite {
		query += ` FOR UPDATE`
	}

	var bm domain.Bookmark
	err := b.s.withTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, b.s.rebind(query), id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("bookmark", id)
		}
		if err != nil {
			return fmt.Errorf("get bookmark: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &bm); err != nil {
			return fmt.Errorf("decode bookmark: %w", err)
		}
		if err := fn(&bm); err != nil {
			return err
		}
		out, err := json.Marshal(&bm)
		if err != nil {
			return fmt.Errorf("encode bookmark: %w", err)
		}
		if _, err := b.s.exec(ctx, tx, `UPDATE bookmarks SET data = ? WHERE id = ?`, string(out), id); err != nil {
			return fmt.Errorf("update bookmark: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

func (b *Bookmarks) Delete(ctx context.Context, id string) error {
	res, err := b.s.exec(ctx, b.s.db, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("bookmark", id)
	}
	return nil
}

func (b *Bookmarks) Ping(ctx context.Context) error { return b.s.Ping(ctx) }

// SaveStats replaces the stored snapshot.
func (b *Bookmarks) SaveStats(ctx context.Context, st domain.Stats) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return b.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := b.s.exec(ctx, tx, `DELETE FROM stats_snapshots WHERE name = ?`, statsSnapshotName); err != nil {
			return fmt.Errorf("clear stats: %w", err)
		}
		_, err := b.s.exec(ctx, tx, `INSERT INTO stats_snapshots (name, data, updated_at) VALUES (?, ?, ?)`,
			statsSnapshotName, string(raw), b.s.stamp())
		if err != nil {
			return fmt.Errorf("save stats: %w", err)
		}
		return nil
	})
}

// LoadStats reports ok=false when no snapshot was ever saved.
func (b *Bookmarks) LoadStats(ctx context.Context) (domain.Stats, bool, error) {
	var raw string
	err := b.s.db.QueryRowContext(ctx,
		b.s.rebind(`SELECT data FROM stats_snapshots WHERE name = ?`), statsSnapshotName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stats{}, false, nil
	}
	if err != nil {
		return domain.Stats{}, false, fmt.Errorf("load stats: %w", err)
	}
	var st domain.Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return domain.Stats{}, false, fmt.Errorf("decode stats: %w", err)
	}
	return st, true, nil
}
