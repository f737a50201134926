package migration

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("sqlite uses a single connection", func(t *testing.T) {
		config := DefaultConfig(DriverSQLite, "/tmp/club.db")

		if config.Driver != DriverSQLite {
			t.Errorf("Expected driver sqlite, got %s", config.Driver)
		}
		if config.BusyTimeout != 30*time.Second {
			t.Errorf("Expected BusyTimeout 30s, got %v", config.BusyTimeout)
		}
		if !config.EnableForeignKeys {
			t.Error("Expected EnableForeignKeys to be true")
		}
		if config.JournalMode != "WAL" {
			t.Errorf("Expected JournalMode WAL, got %s", config.JournalMode)
		}
		if config.MaxOpenConns != 1 {
			t.Errorf("Expected MaxOpenConns 1, got %d", config.MaxOpenConns)
		}
	})

	t.Run("postgres keeps a pool", func(t *testing.T) {
		config := DefaultConfig(DriverPostgres, "postgres://localhost/club")

		if config.MaxOpenConns != 25 {
			t.Errorf("Expected MaxOpenConns 25, got %d", config.MaxOpenConns)
		}
		if config.JournalMode != "" {
			t.Errorf("Expected no journal mode for postgres, got %s", config.JournalMode)
		}
	})
}

func TestParseDriver(t *testing.T) {
	for input, want := range map[string]Driver{"sqlite": DriverSQLite, " Postgres ": DriverPostgres} {
		got, err := ParseDriver(input)
		if err != nil {
			t.Fatalf("ParseDriver(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseDriver(%q) = %s, want %s", input, got, want)
		}
	}

	if _, err := ParseDriver("mysql"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestConnectionManager_DataSourceName(t *testing.T) {
	t.Run("sqlite pragmas become query parameters", func(t *testing.T) {
		manager := NewConnectionManager(DefaultConfig(DriverSQLite, "data/club.db"))
		dsn := manager.DataSourceName()

		if !strings.HasPrefix(dsn, "file:data/club.db?") {
			t.Fatalf("Expected file DSN, got %s", dsn)
		}

		_, rawQuery, _ := strings.Cut(dsn, "?")
		query, err := url.ParseQuery(rawQuery)
		if err != nil {
			t.Fatalf("DSN query did not parse: %v", err)
		}
		if query.Get("_txlock") != "immediate" {
			t.Errorf("Expected _txlock=immediate, got %q", query.Get("_txlock"))
		}

		pragmas := strings.Join(query["_pragma"], ",")
		for _, want := range []string{"busy_timeout(30000)", "foreign_keys(1)", "journal_mode(WAL)", "synchronous(NORMAL)", "cache_size(-2000)"} {
			if !strings.Contains(pragmas, want) {
				t.Errorf("Expected pragma %s in %s", want, pragmas)
			}
		}
	})

	t.Run("existing parameters are preserved", func(t *testing.T) {
		config := Config{Driver: DriverSQLite, DSN: "file:club.db?mode=rwc"}
		dsn := NewConnectionManager(config).DataSourceName()

		if !strings.Contains(dsn, "mode=rwc") {
			t.Errorf("Expected mode parameter to survive, got %s", dsn)
		}
	})

	t.Run("postgres DSN is passed through", func(t *testing.T) {
		config := DefaultConfig(DriverPostgres, "postgres://club@localhost/club?sslmode=disable")
		if got := NewConnectionManager(config).DataSourceName(); got != config.DSN {
			t.Errorf("Expected DSN unchanged, got %s", got)
		}
	})
}

func TestConnectionManager_ValidateConfig(t *testing.T) {
	base := TempFileTestConfig("/tmp/club.db")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty DSN", mutate: func(c *Config) { c.DSN = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "oracle" }, wantErr: true},
		{name: "negative busy timeout", mutate: func(c *Config) { c.BusyTimeout = -time.Second }, wantErr: true},
		{name: "bad journal mode", mutate: func(c *Config) { c.JournalMode = "FAST" }, wantErr: true},
		{name: "bad synchronous mode", mutate: func(c *Config) { c.Synchronous = "SOMETIMES" }, wantErr: true},
		{name: "negative pool size", mutate: func(c *Config) { c.MaxOpenConns = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base
			tt.mutate(&config)
			err := NewConnectionManager(config).ValidateConfig()
			if tt.wantErr && err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
		})
	}
}

func TestConnectionManager_GetConnection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "club.db")
	manager := NewConnectionManager(TempFileTestConfig(dbPath))

	db, err := manager.GetConnection()
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Expected database file to exist: %v", err)
	}

	var foreignKeys int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("Expected foreign keys enabled, got %d", foreignKeys)
	}
}
