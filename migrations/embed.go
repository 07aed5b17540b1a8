// Package migrations embeds the oscd SQL migrations into the binary.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS holds the migration files at its root, ready for database.DB.Migrate.
var FS fs.FS = files
