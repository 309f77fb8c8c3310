package sqlstore

import (
	"context"
	"fmt"
)

// Tables are created when missing. There is no migration history: a schema
// change means a new table name or a manual ALTER.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS docs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		uid        INTEGER NOT NULL,
		url        TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL UNIQUE,
		summary    TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL DEFAULT '',
		source     TEXT NOT NULL DEFAULT '',
		favicon    TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		evaluate   INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uid ON docs(uid)`,
	`CREATE INDEX IF NOT EXISTS idx_url ON docs(url)`,
	`CREATE INDEX IF NOT EXISTS idx_title ON docs(title)`,
	`CREATE INDEX IF NOT EXISTS idx_tags ON docs(tags)`,
	`CREATE INDEX IF NOT EXISTS idx_updated_at ON docs(updated_at)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		uid        INTEGER NOT NULL,
		name       TEXT NOT NULL,
		tags       TEXT NOT NULL DEFAULT '',
		icon       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_uid ON categories(uid)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name)`,
	`CREATE TABLE IF NOT EXISTS categories_docs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		doc_id      INTEGER NOT NULL REFERENCES docs(id) ON DELETE CASCADE,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL,
		UNIQUE (category_id, doc_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_docs_category_id ON categories_docs(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_docs_doc_id ON categories_docs(doc_id)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   TEXT NOT NULL UNIQUE,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stats_snapshots (
		name       TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS docs (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		uid        BIGINT NOT NULL,
		url        VARCHAR(2048) NOT NULL DEFAULT '',
		title      VARCHAR(500) NOT NULL,
		summary    TEXT,
		content    LONGTEXT,
		source     VARCHAR(255) NOT NULL DEFAULT '',
		favicon    VARCHAR(2048) NOT NULL DEFAULT '',
		tags       VARCHAR(1000) NOT NULL DEFAULT '',
		evaluate   INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uk_docs_title (title),
		INDEX idx_uid (uid),
		INDEX idx_url (url(255)),
		INDEX idx_title (title(255)),
		INDEX idx_tags (tags(255)),
		INDEX idx_updated_at (updated_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		uid        BIGINT NOT NULL,
		name       VARCHAR(255) NOT NULL,
		tags       VARCHAR(1000) NOT NULL DEFAULT '',
		icon       VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_categories_uid (uid),
		INDEX idx_categories_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories_docs (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		category_id BIGINT NOT NULL,
		doc_id      BIGINT NOT NULL,
		created_at  DATETIME(6) NOT NULL,
		updated_at  DATETIME(6) NOT NULL,
		UNIQUE KEY uk_category_doc (category_id, doc_id),
		INDEX idx_categories_docs_category_id (category_id),
		INDEX idx_categories_docs_doc_id (doc_id),
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
		FOREIGN KEY (doc_id) REFERENCES docs(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		seq  BIGINT AUTO_INCREMENT PRIMARY KEY,
		id   VARCHAR(36) NOT NULL UNIQUE,
		data LONGTEXT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS stats_snapshots (
		name       VARCHAR(64) PRIMARY KEY,
		data       LONGTEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS docs (
		id         BIGSERIAL PRIMARY KEY,
		uid        BIGINT NOT NULL,
		url        TEXT NOT NULL DEFAULT '',
		title      VARCHAR(500) NOT NULL UNIQUE,
		summary    TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL DEFAULT '',
		source     TEXT NOT NULL DEFAULT '',
		favicon    TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		evaluate   INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uid ON docs(uid)`,
	`CREATE INDEX IF NOT EXISTS idx_url ON docs(url)`,
	`CREATE INDEX IF NOT EXISTS idx_title ON docs(title)`,
	`CREATE INDEX IF NOT EXISTS idx_tags ON docs(tags)`,
	`CREATE INDEX IF NOT EXISTS idx_updated_at ON docs(updated_at)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         BIGSERIAL PRIMARY KEY,
		uid        BIGINT NOT NULL,
		name       VARCHAR(255) NOT NULL,
		tags       TEXT NOT NULL DEFAULT '',
		icon       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_uid ON categories(uid)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name)`,
	`CREATE TABLE IF NOT EXISTS categories_docs (
		id          BIGSERIAL PRIMARY KEY,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		doc_id      BIGINT NOT NULL REFERENCES docs(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (category_id, doc_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_docs_category_id ON categories_docs(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_docs_doc_id ON categories_docs(doc_id)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		seq  BIGSERIAL PRIMARY KEY,
		id   VARCHAR(36) NOT NULL UNIQUE,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stats_snapshots (
		name       VARCHAR(64) PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

func (s *Store) schema() []string {
	switch s.dialect {
	case MySQL:
		return mysqlSchema
	case Postgres:
		return postgresSchema
	default:
		return sqliteSchema
	}
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
