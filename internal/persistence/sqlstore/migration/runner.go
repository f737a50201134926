package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql
var schemaFS embed.FS

// Status describes the schema version after a run.
type Status struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Run applies every pending up migration for cfg.Driver. It opens a dedicated
// connection because golang-migrate closes the handle it is given.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Status, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migration", "driver", string(cfg.Driver))

	db, err := NewConnectionManager(cfg).GetConnection()
	if err != nil {
		return Status{}, NewMigrationError(cfg.Driver, 0, "connect", err)
	}

	var instance database.Driver
	switch cfg.Driver {
	case DriverSQLite:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		db.Close()
		return Status{}, NewMigrationError(cfg.Driver, 0, "driver", err)
	}

	source, err := iofs.New(schemaFS, "sql/"+string(cfg.Driver))
	if err != nil {
		instance.Close()
		return Status{}, NewMigrationError(cfg.Driver, 0, "source", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(cfg.Driver), instance)
	if err != nil {
		source.Close()
		instance.Close()
		return Status{}, NewMigrationError(cfg.Driver, 0, "init", err)
	}
	m.Log = migrateLogger{logger: logger}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("closing migrator failed", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	before, _, err := currentVersion(m)
	if err != nil {
		return Status{}, NewMigrationError(cfg.Driver, 0, "version", err)
	}
	logger.Info("current schema version", "version", before)

	done := make(chan error, 1)
	go func() { done <- m.Up() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		m.GracefulStop <- true
		<-done
		return Status{Version: before}, NewMigrationError(cfg.Driver, before, "up", ctx.Err())
	}

	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed = false
		err = nil
	}
	if err != nil {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return Status{Version: uint(dirty.Version), Dirty: true}, NewMigrationError(cfg.Driver, uint(dirty.Version), "up", fmt.Errorf("%w: %v", ErrDirtyDatabase, err))
		}
		return Status{Version: before}, NewMigrationError(cfg.Driver, before, "up", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
	}

	after, dirty, err := currentVersion(m)
	if err != nil {
		return Status{}, NewMigrationError(cfg.Driver, 0, "version", err)
	}
	logger.Info("schema migrated", "from_version", before, "to_version", after, "changed", changed)

	return Status{Version: after, Dirty: dirty, Changed: changed}, nil
}

func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
