// Package storage wires the client's SQLite database: it opens the file,
// applies the embedded goose migrations, and hands out the repository set.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dverbitsky/chronokeeper/internal/client/migrations"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/chat"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/events"
	"github.com/dverbitsky/chronokeeper/internal/client/repositories/profile"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the client-side stores backed by one database.
type Repositories struct {
	Events  events.Repository
	Profile profile.Repository
	Chat    chat.Repository
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the SQLite database at dsn, migrates it,
// and returns the database handle plus the repository set.
//
// The caller must register the driver, e.g. with a blank import of
// modernc.org/sqlite at the composition root.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent remote pushes.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Events:  events.NewSQLiteRepository(db),
		Profile: profile.NewSQLiteRepository(db),
		Chat:    chat.NewSQLiteRepository(db),
	}
	return db, repos, nil
}
