package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

// dialect hides the differences between SQLite and PostgreSQL: placeholder
// syntax, timestamp encoding and transaction options.
type dialect struct {
	driver migration.Driver
}

// rebind rewrites ? placeholders to $n for PostgreSQL. Queries in this package
// never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if d.driver != migration.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeValue encodes t for a created_at/updated_at column.
func (d dialect) timeValue(t time.Time) any {
	if d.driver == migration.DriverPostgres {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// dateValue encodes an optional calendar date.
func (d dialect) dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	if d.driver == migration.DriverPostgres {
		return *t
	}
	return t.Format(time.DateOnly)
}

// txOptions returns the options for a read-write or read-only transaction.
// SQLite serialises writers through BEGIN IMMEDIATE set on the DSN, so only
// PostgreSQL asks for an isolation level.
func (d dialect) txOptions(readOnly bool) *sql.TxOptions {
	if d.driver == migration.DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: readOnly}
	}
	return &sql.TxOptions{ReadOnly: readOnly}
}

// timestamp scans a column written by timeValue.
type timestamp struct {
	Time time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		return errors.New("sqlstore: null timestamp")
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into timestamp", src)
	}
}

func (ts *timestamp) parse(value string) error {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return fmt.Errorf("sqlstore: parse timestamp %q: %w", value, err)
	}
	ts.Time = parsed.UTC()
	return nil
}

// nullDate scans a nullable column written by dateValue.
type nullDate struct {
	Time *time.Time
}

func (nd *nullDate) Scan(src any) error {
	var value time.Time
	switch v := src.(type) {
	case nil:
		nd.Time = nil
		return nil
	case time.Time:
		value = v
	case string, []byte:
		var text string
		if s, ok := v.(string); ok {
			text = s
		} else {
			text = string(v.([]byte))
		}
		parsed, err := time.Parse(time.DateOnly, text)
		if err != nil {
			return fmt.Errorf("sqlstore: parse date %q: %w", text, err)
		}
		value = parsed
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into date", src)
	}
	date := time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	nd.Time = &date
	return nil
}
