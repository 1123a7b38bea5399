// Package migrations embeds the SQL migration files and applies them with
// the goose programmatic API, both at server start-up and in tests.
// Postgres and SQLite keep separate migration sets because their column
// types and defaults differ.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres holds the *.sql migrations for the postgres backend.
var Postgres = mustSub("postgres")

// SQLite holds the *.sql migrations for the sqlite backend.
var SQLite = mustSub("sqlite")

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic("migrations: " + err.Error())
	}
	return sub
}

// NewProvider returns a goose provider for the dialect's migration set.
// Supported dialects are goose.DialectPostgres and goose.DialectSQLite3.
func NewProvider(dialect goose.Dialect, db *sql.DB) (*goose.Provider, error) {
	var fsys fs.FS
	switch dialect {
	case goose.DialectPostgres:
		fsys = Postgres
	case goose.DialectSQLite3:
		fsys = SQLite
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Up applies every pending migration and returns the number applied.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB) (int, error) {
	provider, err := NewProvider(dialect, db)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}
