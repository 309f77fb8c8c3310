package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

const docColumns = `id, uid, url, title, summary, content, source, favicon, tags, evaluate, created_at, updated_at`

// docHeaderColumns leaves the body out; content scans as "".
const docHeaderColumns = `id, uid, url, title, summary, '' AS content, source, favicon, tags, evaluate, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(r scanner) (*domain.Document, error) {
	var d domain.Document
	err := r.Scan(&d.ID, &d.UID, &d.URL, &d.Title, &d.Summary, &d.Content,
		&d.Source, &d.Favicon, &d.Tags, &d.Evaluate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	defer func() { _ = rows.Close() }()

	out := []*domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (s *Store) upsertDocumentSQL() string {
	const insert = `INSERT INTO docs (uid, url, title, summary, content, source, favicon, tags, evaluate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if s.dialect == MySQL {
		return insert + ` ON DUPLICATE KEY UPDATE
			uid = VALUES(uid), url = VALUES(url), summary = VALUES(summary), content = VALUES(content),
			source = VALUES(source), favicon = VALUES(favicon), tags = VALUES(tags),
			evaluate = VALUES(evaluate), updated_at = VALUES(updated_at)`
	}
	return insert + ` ON CONFLICT (title) DO UPDATE SET
		uid = excluded.uid, url = excluded.url, summary = excluded.summary, content = excluded.content,
		source = excluded.source, favicon = excluded.favicon, tags = excluded.tags,
		evaluate = excluded.evaluate, updated_at = excluded.updated_at`
}

// WriteDocument inserts the document or, when the title already exists,
// overwrites that row. It returns the row id either way.
func (s *Store) WriteDocument(ctx context.Context, in domain.DocumentInput) (int64, error) {
	now := s.stamp()
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx, s.upsertDocumentSQL(),
			in.UID, in.URL, in.Title, in.Summary, in.Content, in.Source, in.Favicon, in.Tags, in.Evaluate, now, now)
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		err = tx.QueryRowContext(ctx, s.rebind(`SELECT id FROM docs WHERE title = ?`), in.Title).Scan(&id)
		if err != nil {
			return fmt.Errorf("resolve document id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *Store) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+docColumns+` FROM docs WHERE id = ?`), id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// UpdateDocument rewrites every column of row id. Taking another
// document's title is reported as domain.ErrConflict.
func (s *Store) UpdateDocument(ctx context.Context, id int64, in domain.DocumentInput) error {
	res, err := s.exec(ctx, s.db, `UPDATE docs SET uid = ?, url = ?, title = ?, summary = ?, content = ?,
		source = ?, favicon = ?, tags = ?, evaluate = ?, updated_at = ? WHERE id = ?`,
		in.UID, in.URL, in.Title, in.Summary, in.Content, in.Source, in.Favicon, in.Tags, in.Evaluate, s.stamp(), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("title %q already used: %w", in.Title, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("document", id)
	}
	return nil
}

// DeleteDocument removes the row and its category links in one transaction.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM categories_docs WHERE doc_id = ?`, id); err != nil {
			return fmt.Errorf("delete document links: %w", err)
		}
		res, err := s.exec(ctx, tx, `DELETE FROM docs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound("document", id)
		}
		return nil
	})
}

// ListDocuments returns documents newest-updated first. uid 0 means all
// owners.
func (s *Store) ListDocuments(ctx context.Context, uid int64, limit, offset int) ([]*domain.Document, error) {
	query := `SELECT ` + docColumns + ` FROM docs`
	args := []any{}
	if uid != 0 {
		query += ` WHERE uid = ?`
		args = append(args, uid)
	}
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

// SearchDocuments matches keyword against title, summary, content and tags.
// Best rated first, then newest. Content is cut to a preview.
func (s *Store) SearchDocuments(ctx context.Context, keyword string, uid int64, limit, offset int) ([]*domain.Document, error) {
	op := s.like()
	pattern := containsPattern(keyword)
	query := `SELECT ` + docColumns + ` FROM docs WHERE (title ` + op + ` ?` + likeEscape +
		` OR summary ` + op + ` ?` + likeEscape +
		` OR content ` + op + ` ?` + likeEscape +
		` OR tags ` + op + ` ?` + likeEscape + `)`
	args := []any{pattern, pattern, pattern, pattern}
	if uid != 0 {
		query += ` AND uid = ?`
		args = append(args, uid)
	}
	query += ` ORDER BY evaluate DESC, updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Content = domain.Preview(d.Content)
	}
	return docs, nil
}

// DocumentsByTag is a substring match on the tags column, best rated first.
// Content is not returned. uid 0 means all owners.
func (s *Store) DocumentsByTag(ctx context.Context, tag string, uid int64, limit, offset int) ([]*domain.Document, error) {
	query := `SELECT ` + docHeaderColumns + ` FROM docs WHERE tags ` + s.like() + ` ?` + likeEscape
	args := []any{containsPattern(tag)}
	if uid != 0 {
		query += ` AND uid = ?`
		args = append(args, uid)
	}
	query += ` ORDER BY evaluate DESC, updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("documents by tag: %w", err)
	}
	return collectDocuments(rows)
}

// CountDocuments counts uid's documents, or all of them when uid is 0.
func (s *Store) CountDocuments(ctx context.Context, uid int64) (int, error) {
	query := `SELECT COUNT(*) FROM docs`
	args := []any{}
	if uid != 0 {
		query += ` WHERE uid = ?`
		args = append(args, uid)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
