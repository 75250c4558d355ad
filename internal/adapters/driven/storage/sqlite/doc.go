// Package sqlite persists sync run history in a local SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; only the
// up files are applied, and each applied version is recorded in
// schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.termsync/data/runs.db. Besides run
// history it holds the state of scheduled tasks.
package sqlite
