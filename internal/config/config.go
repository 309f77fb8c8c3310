package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Bookmark storage backends.
const (
	BackendJSON   = "json"
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQL    = "sql"
)

// SQL drivers (database/sql driver names).
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	ListenPort      string        // ex: ":8000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir         string // bookmarks.json, stats.json, notedocs.db live here
	BookmarkBackend string // json | memory | bolt | sql

	// SQL (documents, categories, and bookmarks when BookmarkBackend=sql)
	SQLDriver       string
	SQLDSN          string
	DBConnAttempts  int           // original deployment retried 5 times
	DBConnDelay     time.Duration // initial delay between attempts
	DBMaxOpenConns  int
	DBConnMaxIdle   time.Duration

	// JSON backups
	BackupEnabled  bool
	BackupKeepDays int
	BackupInterval time.Duration

	// Periodic stats regeneration, 0 = only after writes
	StatsRefreshInterval time.Duration

	// Redis snapshot tier (optional, empty addr = disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries
	RedisMaxWait        time.Duration // max wait between retries
	RedisWarnThreshold  int           // warn after this many attempts
	SnapshotTTL         time.Duration // 0 = no expiry

	// Access
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict /metrics and /readyz to these IPs
	TrustProxy     bool     // true => trust X-Forwarded-For headers
	APIKeys        []string // empty => no key check
	CORSOrigins    []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ListenPort:      getenv("NOTEDOCS_LISTEN_PORT", ":8000"),
		ShutdownTimeout: mustDuration("NOTEDOCS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("NOTEDOCS_REQUEST_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("NOTEDOCS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NOTEDOCS_PRETTY_LOG", true),

		DataDir:         getenv("NOTEDOCS_DATA_DIR", "./data"),
		BookmarkBackend: strings.ToLower(getenv("NOTEDOCS_BOOKMARK_BACKEND", BackendJSON)),

		SQLDriver:      strings.ToLower(getenv("NOTEDOCS_SQL_DRIVER", DriverSQLite)),
		SQLDSN:         getenv("NOTEDOCS_SQL_DSN", ""),
		DBConnAttempts: getenvInt("NOTEDOCS_DB_CONNECT_ATTEMPTS", 5),
		DBConnDelay:    mustDuration("NOTEDOCS_DB_CONNECT_DELAY", 5*time.Second),
		DBMaxOpenConns: getenvInt("NOTEDOCS_DB_MAX_OPEN_CONNS", 10),
		DBConnMaxIdle:  mustDuration("NOTEDOCS_DB_CONN_MAX_IDLE", 5*time.Minute),

		BackupEnabled:  mustBool("NOTEDOCS_BACKUP_ENABLED", true),
		BackupKeepDays: getenvInt("NOTEDOCS_BACKUP_KEEP_DAYS", 30),
		BackupInterval: mustDuration("NOTEDOCS_BACKUP_INTERVAL", 24*time.Hour),

		StatsRefreshInterval: mustDuration("NOTEDOCS_STATS_REFRESH_INTERVAL", time.Hour),

		RedisAddr:           getenv("NOTEDOCS_REDIS_ADDR", ""),
		RedisUser:           getenv("NOTEDOCS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("NOTEDOCS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("NOTEDOCS_REDIS_DB", 0),
		RedisDT:             mustDuration("NOTEDOCS_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("NOTEDOCS_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("NOTEDOCS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("NOTEDOCS_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("NOTEDOCS_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("NOTEDOCS_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("NOTEDOCS_REDIS_MAX_WAIT", 10*time.Second),
		RedisWarnThreshold:  getenvInt("NOTEDOCS_REDIS_WARN_THRESHOLD", 3),
		SnapshotTTL:         mustDuration("NOTEDOCS_SNAPSHOT_TTL", 0),

		RateLimitRPS:   getenvFloat("NOTEDOCS_RATE_LIMIT_RPS", 20),
		RateLimitBurst: getenvInt("NOTEDOCS_RATE_LIMIT_BURST", 40),
		AllowedHosts:   splitAndTrim(getenv("NOTEDOCS_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   splitAndTrim(getenv("NOTEDOCS_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("NOTEDOCS_TRUST_PROXY", false),
		APIKeys:        splitAndTrim(getenv("NOTEDOCS_API_KEYS", "")),
		CORSOrigins:    splitAndTrim(getenv("NOTEDOCS_CORS_ORIGINS", "*")),
	}

	if err := cfg.finalize(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// finalize validates enum-like settings and fills derived defaults.
func (c *Config) finalize() error {
	switch c.BookmarkBackend {
	case BackendJSON, BackendMemory, BackendBolt, BackendSQL:
	default:
		return fmt.Errorf("unsupported NOTEDOCS_BOOKMARK_BACKEND %q", c.BookmarkBackend)
	}

	switch c.SQLDriver {
	case DriverSQLite:
		if c.SQLDSN == "" {
			c.SQLDSN = filepath.Join(c.DataDir, "notedocs.sqlite")
		}
	case DriverMySQL:
		if c.SQLDSN == "" {
			return fmt.Errorf("NOTEDOCS_SQL_DSN is required for driver %s", c.SQLDriver)
		}
		dsn, err := normalizeMySQLDSN(c.SQLDSN)
		if err != nil {
			return err
		}
		c.SQLDSN = dsn
	case DriverPostgres:
		if c.SQLDSN == "" {
			return fmt.Errorf("NOTEDOCS_SQL_DSN is required for driver %s", c.SQLDriver)
		}
	default:
		return fmt.Errorf("unsupported NOTEDOCS_SQL_DRIVER %q", c.SQLDriver)
	}

	if c.DBConnAttempts < 1 {
		c.DBConnAttempts = 1
	}
	if c.BackupKeepDays < 1 {
		c.BackupKeepDays = 30
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if len(cp.APIKeys) > 0 {
		cp.APIKeys = []string{"***REDACTED***"}
	}
	if cp.SQLDriver != DriverSQLite && cp.SQLDSN != "" {
		cp.SQLDSN = "***REDACTED***"
	}
	return cp
}

// RedisEnabled reports whether the redis snapshot tier is configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// normalizeMySQLDSN makes DATETIME columns scan into time.Time.
func normalizeMySQLDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	mc.ParseTime = true
	// Report matched rather than changed rows so owner-guarded updates
	// that rewrite identical values still count as found.
	mc.ClientFoundRows = true
	if mc.Loc == nil {
		mc.Loc = time.UTC
	}
	return mc.FormatDSN(), nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
