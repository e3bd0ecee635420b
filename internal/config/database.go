package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemorySQLitePath keeps the fixture store in memory for the life of the
// process. The pool is pinned to one connection so every query sees the
// same database.
const MemorySQLitePath = ":memory:"

const (
	slowQueryThreshold = 200 * time.Millisecond
	pingTimeout        = 5 * time.Second
)

// OpenFixtureStore opens the database behind the fixture data source:
// SQLite (file or in-memory) or Postgres. GORM statements are logged
// through logger, every statement at debug and otherwise only slow queries
// and errors. The connection is pinged before returning.
func OpenFixtureStore(ctx context.Context, cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool := cfg.Pool
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		path := cfg.SQLite.Path
		if path == MemorySQLitePath {
			pool.MaxOpenConns = 1
			pool.MaxIdleConns = 1
		} else if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory %q: %w", dir, err)
			}
		}
		dialector = sqlite.Open(path)
	case "postgres":
		dialector = postgres.Open(buildPostgresDSN(&cfg.Postgres))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := configurePool(db, &pool); err != nil {
		closeDB(db)
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.PingContext(pingCtx); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}

	logger.Info("fixture store opened",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", effectiveMaxIdleConns(pool.MaxIdleConns)),
		slog.Int("max_open_conns", effectiveMaxOpenConns(pool.MaxOpenConns)),
		slog.String("conn_max_lifetime", effectiveConnMaxLifetime(pool.ConnMaxLifetime)),
	)
	return db, nil
}

// newGormLogger writes GORM's log lines to logger at warn level.
func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	mode := gormlogger.Warn
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		mode = gormlogger.Info
	}
	return gormlogger.New(
		slog.NewLogLogger(logger.With(slog.String("component", "gorm")).Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  mode,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// configurePool applies pool settings; zero values take the defaults.
func configurePool(db *gorm.DB, pool *PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}

	lifetime, err := time.ParseDuration(effectiveConnMaxLifetime(pool.ConnMaxLifetime))
	if err != nil {
		return fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", pool.ConnMaxLifetime, err)
	}
	if lifetime <= 0 {
		return fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", pool.ConnMaxLifetime)
	}

	sqlDB.SetMaxIdleConns(effectiveMaxIdleConns(pool.MaxIdleConns))
	sqlDB.SetMaxOpenConns(effectiveMaxOpenConns(pool.MaxOpenConns))
	sqlDB.SetConnMaxLifetime(lifetime)
	return nil
}

func effectiveMaxIdleConns(v int) int {
	if v <= 0 {
		return 10
	}
	return v
}

func effectiveMaxOpenConns(v int) int {
	if v <= 0 {
		return 100
	}
	return v
}

func effectiveConnMaxLifetime(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "1h"
	}
	return v
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}
