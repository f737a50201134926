package migration

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Driver names a supported database engine. The values double as the
// database/sql driver names.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver validates a configured driver name.
func ParseDriver(value string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(value))) {
	case DriverSQLite:
		return DriverSQLite, nil
	case DriverPostgres:
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, value)
	}
}

// Config holds connection settings for the backing database
type Config struct {
	// Driver selects the engine
	Driver Driver

	// DSN is the SQLite file path or the PostgreSQL connection string
	DSN string

	// BusyTimeout sets how long SQLite waits for the write lock
	BusyTimeout time.Duration

	// EnableForeignKeys enables SQLite foreign key enforcement
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the SQLite synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	// CacheSize sets the SQLite page cache size in KB (negative for pages)
	CacheSize int

	// MaxOpenConns sets the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum lifetime of connections
	ConnMaxLifetime time.Duration
}

// ConnectionManager opens configured database handles
type ConnectionManager interface {
	// GetConnection returns a configured database connection
	GetConnection() (*sql.DB, error)

	// DataSourceName returns the DSN handed to database/sql
	DataSourceName() string

	// CreateDatabaseFile creates the SQLite database file if it doesn't exist
	CreateDatabaseFile() error

	// ValidateConfig validates the configuration
	ValidateConfig() error
}

type connectionManager struct {
	config Config
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config Config) ConnectionManager {
	return &connectionManager{config: config}
}

// GetConnection returns a configured database connection
func (cm *connectionManager) GetConnection() (*sql.DB, error) {
	if err := cm.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	if err := cm.CreateDatabaseFile(); err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}

	db, err := sql.Open(string(cm.config.Driver), cm.DataSourceName())
	if err != nil {
		return nil, NewDatabaseError("", "open", err)
	}

	if cm.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cm.config.MaxOpenConns)
	}
	if cm.config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cm.config.MaxIdleConns)
	}
	if cm.config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cm.config.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewDatabaseError("", "ping", err)
	}

	return db, nil
}

// DataSourceName returns the DSN handed to database/sql. For SQLite the
// PRAGMAs travel as _pragma parameters so every pooled connection receives
// them, and transactions begin IMMEDIATE so writers serialise on BEGIN.
func (cm *connectionManager) DataSourceName() string {
	if cm.config.Driver != DriverSQLite {
		return cm.config.DSN
	}

	path, rawQuery, _ := strings.Cut(cm.config.DSN, "?")
	path = strings.TrimPrefix(path, "file:")

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}

	if cm.config.BusyTimeout > 0 {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cm.config.BusyTimeout.Milliseconds()))
	}
	if cm.config.EnableForeignKeys {
		query.Add("_pragma", "foreign_keys(1)")
	}
	if cm.config.JournalMode != "" {
		query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", cm.config.JournalMode))
	}
	if cm.config.Synchronous != "" {
		query.Add("_pragma", fmt.Sprintf("synchronous(%s)", cm.config.Synchronous))
	}
	if cm.config.CacheSize != 0 {
		query.Add("_pragma", fmt.Sprintf("cache_size(%d)", cm.config.CacheSize))
	}
	query.Set("_txlock", "immediate")

	return "file:" + path + "?" + query.Encode()
}

// CreateDatabaseFile creates the SQLite database file if it doesn't exist
func (cm *connectionManager) CreateDatabaseFile() error {
	if cm.config.Driver != DriverSQLite {
		return nil
	}

	path, _, _ := strings.Cut(cm.config.DSN, "?")
	path = strings.TrimPrefix(path, "file:")
	if path == ":memory:" || path == "" {
		return nil
	}

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create database file %s: %w", path, err)
	}

	return file.Close()
}

// ValidateConfig validates the configuration
func (cm *connectionManager) ValidateConfig() error {
	if _, err := ParseDriver(string(cm.config.Driver)); err != nil {
		return err
	}

	if cm.config.DSN == "" {
		return fmt.Errorf("DSN cannot be empty")
	}

	if cm.config.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}

	validJournalModes := map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}
	if cm.config.JournalMode != "" && !validJournalModes[cm.config.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", cm.config.JournalMode)
	}

	validSyncModes := map[string]bool{
		"OFF":    true,
		"NORMAL": true,
		"FULL":   true,
		"EXTRA":  true,
	}
	if cm.config.Synchronous != "" && !validSyncModes[cm.config.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", cm.config.Synchronous)
	}

	if cm.config.MaxOpenConns < 0 {
		return fmt.Errorf("MaxOpenConns cannot be negative")
	}
	if cm.config.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}
	if cm.config.ConnMaxLifetime < 0 {
		return fmt.Errorf("ConnMaxLifetime cannot be negative")
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults for driver.
// SQLite is limited to a single connection so that every transaction runs
// alone against the file.
func DefaultConfig(driver Driver, dsn string) Config {
	if driver == DriverPostgres {
		return Config{
			Driver:          DriverPostgres,
			DSN:             dsn,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		}
	}
	return Config{
		Driver:            DriverSQLite,
		DSN:               dsn,
		BusyTimeout:       30 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		CacheSize:         -2000, // 2000 pages
		MaxOpenConns:      1,
		MaxIdleConns:      1,
		ConnMaxLifetime:   0,
	}
}

// TempFileTestConfig returns a SQLite configuration for temporary file-based testing
func TempFileTestConfig(tempFilePath string) Config {
	return Config{
		Driver:            DriverSQLite,
		DSN:               tempFilePath,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		MaxOpenConns:      1,
		MaxIdleConns:      1,
	}
}
