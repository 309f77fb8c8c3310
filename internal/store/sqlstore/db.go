package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// Dialect is the database/sql driver name.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// Options configures Open.
type Options struct {
	Driver       string
	DSN          string
	Attempts     int           // connection attempts before giving up
	Delay        time.Duration // first backoff delay
	MaxOpenConns int
	ConnMaxIdle  time.Duration
}

// Store is the relational backend for documents, categories and, when
// selected, bookmarks.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides time.Now for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects with retries, then creates the schema if missing.
func Open(ctx context.Context, opts Options, log logger.Logger, storeOpts ...Option) (*Store, error) {
	dialect, err := parseDialect(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if dialect == SQLite && !strings.Contains(dsn, "_foreign_keys") {
		dsn += sep(dsn) + "_foreign_keys=on"
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == SQLite {
		// One writer; also keeps ":memory:" databases alive.
		db.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.ConnMaxIdle > 0 {
			db.SetConnMaxIdleTime(opts.ConnMaxIdle)
		}
	}

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = time.Second
	}

	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database not reachable, retrying",
				logger.String("driver", string(dialect)),
				logger.Int("attempt", int(n)+1),
				logger.Int("max_attempts", attempts),
				logger.Error(err))
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s after %d attempts: %w", dialect, attempts, err)
	}

	s, err := New(ctx, db, dialect, storeOpts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database ready", logger.String("driver", string(dialect)))
	return s, nil
}

// New wraps an open handle and ensures the schema exists.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*Store, error) {
	s := &Store{db: db, dialect: dialect, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Dialect() Dialect { return s.dialect }

func parseDialect(driver string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(driver)); d {
	case SQLite, MySQL, Postgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func sep(dsn string) string {
	if strings.Contains(dsn, "?") {
		return "&"
	}
	return "?"
}

// stamp is the write timestamp. Microseconds are what mysql DATETIME(6) and
// postgres keep.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// like is the case-insensitive pattern operator of the dialect.
func (s *Store) like() string {
	if s.dialect == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// likeEscape is the ESCAPE character paired with containsPattern. '!' has
// no special meaning in any dialect's string literals.
const likeEscape = ` ESCAPE '!'`

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches term literally anywhere in a column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (s *Store) exec(ctx context.Context, q execer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insertID runs an INSERT and returns the generated id column.
func (s *Store) insertID(ctx context.Context, q interface {
	execer
	querier
}, query string, args ...any) (int64, error) {
	if s.dialect == Postgres {
		var id int64
		err := q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// withTx runs fn in a transaction and commits when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// isUniqueViolation recognizes duplicate-key errors of all three drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
