package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/club-scheduler/internal/persistence"
)

// repositories implements persistence.Repositories on a single transaction.
type repositories struct {
	tx        *sql.Tx
	dialect   dialect
	mapper    *ErrorMapper
	transient error
}

var _ persistence.Repositories = (*repositories)(nil)

func newRepositories(tx *sql.Tx, d dialect, mapper *ErrorMapper) *repositories {
	return &repositories{tx: tx, dialect: d, mapper: mapper}
}

func (r *repositories) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := r.tx.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, r.fail(err)
	}
	return result, nil
}

func (r *repositories) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := r.tx.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, r.fail(err)
	}
	return rows, nil
}

func (r *repositories) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.tx.QueryRowContext(ctx, r.dialect.rebind(query), args...)
}

// fail maps err and remembers transient failures so the store can retry the
// transaction.
func (r *repositories) fail(err error) error {
	if r.mapper.IsTransient(err) {
		r.transient = err
	}
	return r.mapper.MapError(err)
}

// affectedOne converts a zero row count into ErrNotFound.
func (r *repositories) affectedOne(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.fail(err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
