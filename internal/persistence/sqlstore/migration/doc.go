// Package migration opens database handles for the club store and applies the
// embedded schema with golang-migrate.
//
// Schema files live under sql/<driver>/ and follow golang-migrate naming:
// {version}_{description}.up.sql and the matching .down.sql. Both SQLite and
// PostgreSQL carry the same tables; only column types differ.
//
// Example usage:
//
//	cfg := migration.DefaultConfig(migration.DriverSQLite, "club.db")
//	if _, err := migration.Run(ctx, cfg, logger); err != nil {
//		log.Fatalf("Migration failed: %v", err)
//	}
package migration
