package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

const categoryColumns = `id, uid, name, tags, icon, created_at, updated_at`

func scanCategory(r scanner) (*domain.Category, error) {
	var c domain.Category
	if err := r.Scan(&c.ID, &c.UID, &c.Name, &c.Tags, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in domain.CategoryInput) (int64, error) {
	now := s.stamp()
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO categories (uid, name, tags, icon, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.UID, in.Name, in.Tags, in.Icon, now, now)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`), id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the owner's categories, newest first.
func (s *Store) ListCategories(ctx context.Context, uid int64) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+categoryColumns+` FROM categories WHERE uid = ? ORDER BY created_at DESC, id DESC`), uid)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// UpdateCategory writes the supplied fields when (id, uid) matches a row.
func (s *Store) UpdateCategory(ctx context.Context, id, uid int64, p domain.CategoryPatch) error {
	if p.Empty() {
		return domain.NewValidationError("body", "at least one of name, tags, icon is required")
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *p.Tags)
	}
	if p.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *p.Icon)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.stamp(), id, uid)

	res, err := s.exec(ctx, s.db,
		`UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ? AND uid = ?`, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("category", id)
	}
	return nil
}

// DeleteCategory drops the links, then the category, when (id, uid) matches.
func (s *Store) DeleteCategory(ctx context.Context, id, uid int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM categories WHERE id = ? AND uid = ?`), id, uid).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("category", id)
		}
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}

		if _, err := s.exec(ctx, tx, `DELETE FROM categories_docs WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("delete category links: %w", err)
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM categories WHERE id = ? AND uid = ?`, id, uid); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// AddDocument links docID to categoryID. added is false when the link was
// already there. A missing document is domain.ErrNotFound.
func (s *Store) AddDocument(ctx context.Context, categoryID, docID int64) (added bool, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM docs WHERE id = ?`), docID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("document", docID)
		}
		if err != nil {
			return fmt.Errorf("check document: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			s.rebind(`SELECT 1 FROM categories_docs WHERE category_id = ? AND doc_id = ?`), categoryID, docID).Scan(&one)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check link: %w", err)
		}

		now := s.stamp()
		_, err = s.exec(ctx, tx,
			`INSERT INTO categories_docs (category_id, doc_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			categoryID, docID, now, now)
		if err != nil {
			return fmt.Errorf("link document: %w", err)
		}
		added = true
		return nil
	})
	// A concurrent add won the race; the pair exists, which is all we promise.
	if isUniqueViolation(err) {
		return false, nil
	}
	return added, err
}

// RemoveDocument unlinks the pair or reports domain.ErrNotFound.
func (s *Store) RemoveDocument(ctx context.Context, categoryID, docID int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM categories_docs WHERE category_id = ? AND doc_id = ?`, categoryID, docID)
	if err != nil {
		return fmt.Errorf("unlink document: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("category document", fmt.Sprintf("%d/%d", categoryID, docID))
	}
	return nil
}

// CategoryDocuments joins the links to their documents, newest-updated first.
func (s *Store) CategoryDocuments(ctx context.Context, categoryID int64, limit, offset int) ([]*domain.Document, error) {
	cols := strings.ReplaceAll("d."+docColumns, ", ", ", d.")
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+cols+` FROM docs d
		JOIN categories_docs cd ON cd.doc_id = d.id
		WHERE cd.category_id = ?
		ORDER BY d.updated_at DESC, d.id DESC LIMIT ? OFFSET ?`), categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("category documents: %w", err)
	}
	return collectDocuments(rows)
}

func (s *Store) CountCategoryDocuments(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM categories_docs WHERE category_id = ?`), categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category documents: %w", err)
	}
	return n, nil
}
