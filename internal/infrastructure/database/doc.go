// Package database provides SQLite connectivity for the sqlite storage driver.
//
// This package manages:
//   - Opening the database file (or a private in-memory database)
//   - WAL mode and busy timeout pragmas
//   - Versioned schema migrations read from an fs.FS
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
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
// optional matching .down.sql.
package database
