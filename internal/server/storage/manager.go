// Package storage wires the server's database connection, repositories and
// schema migrations together.
package storage

import (
	"context"
	"database/sql"

	"github.com/dverbitsky/chronokeeper/internal/server/repositories/events"
)

// RepositoryManager hands out the server's repositories over one shared
// connection pool.
type RepositoryManager interface {
	Conn() *sql.DB
	Events() events.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
