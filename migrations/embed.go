// Package migrations embeds the SQL schema for the sqlite storage driver.
//
// The files are compiled into the binary so the service never needs them on
// disk at runtime.
package migrations

import "embed"

// FS is the migration set passed to database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
