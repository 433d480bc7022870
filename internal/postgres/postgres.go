package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB with query tracing
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// Querier interface defines the database operations used by repositories
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// NewDB opens a pooled connection. It returns nil when postgres is disabled
// and the in-memory repositories are used instead.
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	if !cfg.Postgres.Enabled {
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	logger.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName,
	)

	return Wrap(db, logger), nil
}

// Wrap adapts an open pool
func Wrap(db *sqlx.DB, logger *logger.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection. It is a no-op on a nil DB.
func (db *DB) Close() {
	if db == nil {
		return
	}
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}

// Ping checks the pool can reach the server. A nil DB has nothing to check.
func (db *DB) Ping(ctx context.Context) error {
	if db == nil {
		return nil
	}
	if err := db.DB.PingContext(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Database unavailable").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// GetQuerier returns a traced querier over the pool
func (db *DB) GetQuerier() Querier {
	return NewTracedQuerier(db.DB, db.logger)
}
