package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KV is the device key-value storage that session and profile state is
// persisted to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Apply writes every Set entry and removes every Delete key as one unit.
	Apply(ctx context.Context, b Batch) error
	Close() error
}

type Batch struct {
	Set    map[string]string
	Delete []string
}

func (b Batch) empty() bool {
	return len(b.Set) == 0 && len(b.Delete) == 0
}

func Set(ctx context.Context, kv KV, key, value string) error {
	return kv.Apply(ctx, Batch{Set: map[string]string{key: value}})
}

func Delete(ctx context.Context, kv KV, keys ...string) error {
	return kv.Apply(ctx, Batch{Delete: keys})
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Options struct {
	Driver      string
	DSN         string
	RedisAddr   string
	RedisPrefix string
}

func Open(ctx context.Context, opts Options, log *slog.Logger) (KV, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	switch driver {
	case "", DriverMemory:
		return NewMemoryKV(), nil
	case DriverSQLite, DriverPostgres:
		db, err := openGorm(driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		kv, err := NewGormKV(db)
		if err != nil {
			return nil, err
		}
		log.Debug("device storage opened", "driver", driver)
		return kv, nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
		}
		log.Debug("device storage opened", "driver", driver, "addr", opts.RedisAddr)
		return NewRedisKV(client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
	}
}

func openGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:tod.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN")
		}
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", driver, err)
	}
	return db, nil
}
