// Package sqlstore implements persistence.Store on SQLite (modernc.org/sqlite)
// and PostgreSQL (github.com/lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

// Options tunes a Store beyond its connection settings.
type Options struct {
	Retry  RetryConfig
	Logger *slog.Logger
}

// Store is a persistence.Store backed by database/sql.
type Store struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
	logger *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database described by config. The schema must already
// be migrated; see migration.Run.
func Open(config migration.Config, opts Options) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return newStore(pool, opts), nil
}

func newStore(pool *ConnectionPool, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retry := opts.Retry
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig()
	}
	logger = logger.With("component", "sqlstore", "driver", string(pool.config.Driver))
	return &Store{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(retry, logger),
		logger: logger,
	}
}

// WithTransaction runs fn in a serializable transaction, retrying the whole
// transaction when the database reports a transient conflict.
func (s *Store) WithTransaction(ctx context.Context, fn persistence.TxFunc) error {
	return s.retry.WithRetry(ctx, func() error {
		return s.attempt(ctx, s.pool.WithTransaction, fn)
	})
}

// WithReadOnlyTransaction runs fn in a read-only transaction.
func (s *Store) WithReadOnlyTransaction(ctx context.Context, fn persistence.TxFunc) error {
	return s.retry.WithRetry(ctx, func() error {
		return s.attempt(ctx, s.pool.WithReadOnlyTransaction, fn)
	})
}

func (s *Store) attempt(ctx context.Context, begin func(context.Context, TransactionFunc) error, fn persistence.TxFunc) error {
	var repos *repositories
	err := begin(ctx, func(tx *sql.Tx) error {
		repos = newRepositories(tx, s.pool.dialect, s.mapper)
		return fn(repos)
	})
	if err != nil && repos != nil && repos.transient != nil {
		return &transientError{err: err}
	}
	return err
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// DB exposes the underlying handle for tests and health checks.
func (s *Store) DB() *sql.DB {
	return s.pool.DB()
}
