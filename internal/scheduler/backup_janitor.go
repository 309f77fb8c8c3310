package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/metrics"
	"github.com/MrSnakeDoc/notedocs/internal/store/jsonfile"
)

const (
	DefaultBackupInterval = 24 * time.Hour
	DefaultKeepDays       = 30
)

// BackupJanitor prunes JSON backups older than keepDays.
type BackupJanitor struct {
	dir      string
	keepDays int
	interval time.Duration
	logger   logger.Logger
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewBackupJanitor(dir string, keepDays int, interval time.Duration, log logger.Logger) *BackupJanitor {
	if keepDays < 1 {
		keepDays = DefaultKeepDays
	}
	if interval <= 0 {
		interval = DefaultBackupInterval
	}
	return &BackupJanitor{
		dir:      dir,
		keepDays: keepDays,
		interval: interval,
		logger:   log,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start prunes once, then every interval.
func (j *BackupJanitor) Start(ctx context.Context) {
	j.logger.Info("backup janitor started",
		logger.String("dir", j.dir),
		logger.Int("keep_days", j.keepDays),
		logger.Duration("interval", j.interval))
	runEvery(ctx, j.interval, j.stopCh, j.logger, "backup prune", func(context.Context) error {
		_, err := j.Prune()
		return err
	})
}

func (j *BackupJanitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// Prune removes expired backups and returns how many went.
func (j *BackupJanitor) Prune() (int, error) {
	n, err := jsonfile.PruneBackups(j.dir, j.keepDays, j.now())
	if n > 0 {
		metrics.BackupsPruned.Add(float64(n))
		j.logger.Info("pruned json backups",
			logger.Int("removed", n),
			logger.String("dir", j.dir))
	} else if err == nil {
		j.logger.Debug("no json backups to prune")
	}
	return n, err
}
