// Package database provides the SQLite store behind the oscd audit log.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations read from an fs.FS (see package migrations)
//   - Connection lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Migrations are additive: new columns must be
// NULLABLE or have DEFAULT values.
//
// All queries use parameterised statements. The database file is created
// with mode 0600.
package database
