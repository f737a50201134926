package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

// ConnectionPool manages database connections with transaction support
type ConnectionPool struct {
	db      *sql.DB
	config  migration.Config
	dialect dialect
}

// NewConnectionPool creates a new connection pool for config.Driver
func NewConnectionPool(config migration.Config) (*ConnectionPool, error) {
	connectionManager := migration.NewConnectionManager(config)

	db, err := connectionManager.GetConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &ConnectionPool{
		db:      db,
		config:  config,
		dialect: dialect{driver: config.Driver},
	}, nil
}

// DB returns the underlying database connection
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a serializable database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	return cp.run(ctx, cp.dialect.txOptions(false), "transaction", fn)
}

// WithReadOnlyTransaction executes fn within a read-only transaction
func (cp *ConnectionPool) WithReadOnlyTransaction(ctx context.Context, fn TransactionFunc) error {
	return cp.run(ctx, cp.dialect.txOptions(true), "read-only transaction", fn)
}

func (cp *ConnectionPool) run(ctx context.Context, opts *sql.TxOptions, label string, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", label, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s failed (rollback error: %v): %w", label, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", label, err)
	}

	return nil
}
