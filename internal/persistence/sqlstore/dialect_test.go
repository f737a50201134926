package sqlstore

import (
	"database/sql"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

func TestDialect_Rebind(t *testing.T) {
	query := `UPDATE rooms SET booked = ? WHERE id = ? AND booked = ?`

	if got := (dialect{driver: migration.DriverSQLite}).rebind(query); got != query {
		t.Errorf("Expected sqlite query unchanged, got %s", got)
	}

	want := `UPDATE rooms SET booked = $1 WHERE id = $2 AND booked = $3`
	if got := (dialect{driver: migration.DriverPostgres}).rebind(query); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestDialect_TxOptions(t *testing.T) {
	pg := dialect{driver: migration.DriverPostgres}.txOptions(false)
	if pg.Isolation != sql.LevelSerializable || pg.ReadOnly {
		t.Errorf("Expected serializable read-write options for postgres, got %+v", pg)
	}

	lite := dialect{driver: migration.DriverSQLite}.txOptions(true)
	if lite.Isolation != sql.LevelDefault || !lite.ReadOnly {
		t.Errorf("Expected default read-only options for sqlite, got %+v", lite)
	}
}

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

	for _, src := range []any{want, want.Format(time.RFC3339Nano), []byte(want.Format(time.RFC3339Nano))} {
		var ts timestamp
		if err := ts.Scan(src); err != nil {
			t.Fatalf("Scan(%T) failed: %v", src, err)
		}
		if !ts.Time.Equal(want) {
			t.Errorf("Scan(%T) = %v, want %v", src, ts.Time, want)
		}
	}

	var ts timestamp
	if err := ts.Scan(nil); err == nil {
		t.Error("Expected error scanning NULL timestamp")
	}
}

func TestNullDate_Scan(t *testing.T) {
	var nd nullDate
	if err := nd.Scan(nil); err != nil || nd.Time != nil {
		t.Fatalf("Expected nil date, got %v (err %v)", nd.Time, err)
	}

	if err := nd.Scan("1990-05-17"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if nd.Time == nil || nd.Time.Year() != 1990 || nd.Time.Month() != time.May || nd.Time.Day() != 17 {
		t.Fatalf("Unexpected date %v", nd.Time)
	}

	if err := nd.Scan("17/05/1990"); err == nil {
		t.Error("Expected error for malformed date")
	}
}
