// Package store reads the source Fires table and writes the reduced table
// to the destination, both in SQLite files.
package store

import (
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

// readOnlyDSN turns a file path into a SQLite URI opened with mode=ro.
// Both drivers open URIs, so the same DSN works for either.
func readOnlyDSN(path string) string {
	return "file:" + escapePath(path) + "?mode=ro"
}

// readWriteDSN opens or creates the file.
func readWriteDSN(path string) string {
	return "file:" + escapePath(path) + "?mode=rwc"
}

// escapePath escapes the characters SQLite's URI parser treats specially.
func escapePath(path string) string {
	r := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
	return r.Replace(path)
}

// quoteIdent quotes a table or column name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
