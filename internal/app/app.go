package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/config"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/index"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/redis"
	"github.com/MrSnakeDoc/notedocs/internal/scheduler"
	"github.com/MrSnakeDoc/notedocs/internal/service"
	"github.com/MrSnakeDoc/notedocs/internal/store/boltdb"
	"github.com/MrSnakeDoc/notedocs/internal/store/jsonfile"
	redisstore "github.com/MrSnakeDoc/notedocs/internal/store/redis"
	"github.com/MrSnakeDoc/notedocs/internal/store/sqlstore"
	"github.com/MrSnakeDoc/notedocs/internal/utils"
	"github.com/MrSnakeDoc/notedocs/internal/version"
)

// bookmarkBackend is what every bookmark store provides.
type bookmarkBackend interface {
	service.BookmarkRepository
	service.SnapshotStore
	Ping(ctx context.Context) error
}

type closer struct {
	name string
	c    io.Closer
}

// Runtime holds the opened stores and the services built on them. The
// serve, import and stats commands all start from one.
type Runtime struct {
	Log        logger.Logger
	Backend    string
	Repo       service.BookmarkRepository
	Bookmarks  *service.BookmarkService
	Stats      *service.StatsService
	Documents  *service.DocumentService
	Categories *service.CategoryService
	Checks     []deps.Check
	BackupDir  string // empty unless the json backend keeps backups

	closers []closer
}

// Open builds a Runtime from cfg. On error everything opened so far is
// closed again.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	rt := &Runtime{Log: log, Backend: cfg.BookmarkBackend}
	opened := false
	defer func() {
		if !opened {
			rt.Close()
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log.Info("opening sql store", logger.String("driver", cfg.SQLDriver))
	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:       cfg.SQLDriver,
		DSN:          cfg.SQLDSN,
		Attempts:     cfg.DBConnAttempts,
		Delay:        cfg.DBConnDelay,
		MaxOpenConns: cfg.DBMaxOpenConns,
		ConnMaxIdle:  cfg.DBConnMaxIdle,
	}, log.Named("sql"))
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closer{"sql", db})
	rt.Checks = append(rt.Checks, deps.Check{Name: "sql", Critical: true, Ping: db.Ping})

	backend, err := rt.openBackend(cfg, db)
	if err != nil {
		return nil, err
	}
	rt.Checks = append(rt.Checks, deps.Check{Name: "bookmarks", Critical: true, Ping: backend.Ping})

	var snaps service.SnapshotStore = backend
	if cfg.RedisEnabled() {
		if cached := rt.openRedis(ctx, cfg, backend); cached != nil {
			snaps = cached
		}
	}

	rt.Repo = backend
	rt.Stats = service.NewStatsService(backend, snaps, log.Named("stats"), nil)
	rt.Bookmarks = service.NewBookmarkService(backend, rt.Stats, log.Named("bookmarks"))
	rt.Documents = service.NewDocumentService(db, log.Named("documents"))
	rt.Categories = service.NewCategoryService(db, log.Named("categories"))
	opened = true
	return rt, nil
}

func (rt *Runtime) openBackend(cfg *config.Config, db *sqlstore.Store) (bookmarkBackend, error) {
	switch cfg.BookmarkBackend {
	case config.BackendJSON:
		js, err := jsonfile.New(cfg.DataDir, jsonfile.WithBackups(cfg.BackupEnabled))
		if err != nil {
			return nil, err
		}
		if cfg.BackupEnabled {
			rt.BackupDir = js.BackupDir()
		}
		return js, nil
	case config.BackendBolt:
		bs, err := boltdb.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, closer{"bolt", bs})
		return bs, nil
	case config.BackendSQL:
		return db.Bookmarks(), nil
	case config.BackendMemory:
		rt.Log.Warn("memory bookmark backend selected, nothing survives a restart")
		return index.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unsupported bookmark backend %q", cfg.BookmarkBackend)
	}
}

// openRedis puts the redis snapshot tier in front of fallback. Redis being
// unreachable is logged and the service runs without it.
func (rt *Runtime) openRedis(ctx context.Context, cfg *config.Config, fallback service.SnapshotStore) *redisstore.Store {
	rt.Log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisRT,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, rt.Log.Named("redis"))
	if err != nil {
		rt.Log.Warn("redis unavailable, stats snapshots go straight to the bookmark store",
			logger.Error(err))
		return nil
	}
	rt.Log.Info("Redis initialized successfully")
	rt.closers = append(rt.closers, closer{"redis", client})

	store := redisstore.NewStore(client, fallback, cfg.SnapshotTTL, rt.Log.Named("redis"))
	rt.Checks = append(rt.Checks, deps.Check{Name: "redis", Ping: store.Ping})
	return store
}

// Close releases every store in reverse opening order.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		utils.CloseLogged(rt.closers[i].c, rt.closers[i].name, rt.Log)
	}
	rt.closers = nil
}

// App is the long-running HTTP service.
type App struct {
	cfg       *config.Config
	logger    logger.Logger
	rt        *Runtime
	server    *httpserver.Server
	janitor   *scheduler.BackupJanitor
	refresher *scheduler.StatsRefresher
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	rt, err := Open(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		APIKeys:      cfg.APIKeys,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPS: cfg.RateLimitRPS,
		RateBurst:    cfg.RateLimitBurst,
		Backend:      rt.Backend,
		Bookmarks:    rt.Bookmarks,
		Stats:        rt.Stats,
		Documents:    rt.Documents,
		Categories:   rt.Categories,
		Checks:       rt.Checks,
	}

	a := &App{
		cfg:       cfg,
		logger:    loggerClient,
		rt:        rt,
		server:    httpserver.New(cfg, loggerClient, d),
		refresher: scheduler.NewStatsRefresher(rt.Stats, cfg.StatsRefreshInterval, loggerClient.Named("scheduler")),
	}
	if rt.BackupDir != "" {
		a.janitor = scheduler.NewBackupJanitor(rt.BackupDir, cfg.BackupKeepDays, cfg.BackupInterval, loggerClient.Named("scheduler"))
	}
	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting notedocs %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info("build info",
		logger.String("commit", version.Commit),
		logger.String("built", version.BuildDate),
		logger.String("go", version.GoVersion),
		logger.String("backend", a.rt.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.janitor != nil {
		a.janitor.Start(ctx)
	}
	a.refresher.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.janitor != nil {
		a.janitor.Stop()
	}
	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.rt.Close()
	if runErr == nil {
		a.logger.Info("✅ notedocs stopped cleanly")
	}
	return runErr
}
