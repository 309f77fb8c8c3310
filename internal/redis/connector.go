package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // ex: "localhost:6379"
	User           string        // optional
	Password       string        // optional
	RedisDB        int           // DB number
	DialTimeout    time.Duration // per dial
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolSize       int
	ConnectTimeout time.Duration // total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries, doubles each time
	MaxWait        time.Duration // cap on the wait between retries
	PingTimeout    time.Duration // per ping attempt
	WarnThreshold  int           // attempts logged as warnings before escalating to errors
}

func (o ConnectOptions) validate() error {
	switch {
	case o.Addr == "":
		return fmt.Errorf("redis addr is empty")
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	case o.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait)
	case o.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	case o.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold)
	}
	return nil
}

// attemptsWithin counts the pings that fit in total when waits start at
// initial and double up to maxWait.
func attemptsWithin(total, initial, maxWait time.Duration) uint {
	n := uint(1)
	wait := initial
	for spent := time.Duration(0); spent+wait <= total; n++ {
		spent += wait
		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
	return n
}

// New returns a client once Redis answers a ping, retrying with exponential
// backoff until ConnectTimeout. The caller owns the client.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.validate(); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis",
		logger.String("addr", opts.Addr),
		logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
			defer pingCancel()
			return client.Ping(pingCtx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(attemptsWithin(opts.ConnectTimeout, opts.RetryInterval, opts.MaxWait)),
		retry.Delay(opts.RetryInterval),
		retry.MaxDelay(opts.MaxWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			attempt := int(n) + 1
			fields := []zap.Field{
				logger.String("addr", opts.Addr),
				logger.Int("attempt", attempt),
				logger.Error(err),
			}
			if attempt <= opts.WarnThreshold {
				log.Warn("redis connection failed, retrying", fields...)
				return
			}
			log.Error("redis still unavailable, retrying", fields...)
		}),
	)
	if err != nil {
		_ = client.Close()
		log.Error("redis unavailable",
			logger.String("addr", opts.Addr),
			logger.Int("attempts", attempts),
			logger.Error(err))
		return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempts, err)
	}

	if attempts > 1 {
		log.Warn("connected to redis after retry",
			logger.String("addr", opts.Addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", time.Since(start)))
	} else {
		log.Info("connected to redis", logger.String("addr", opts.Addr))
	}
	return client, nil
}
