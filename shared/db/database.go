package db

import (
	"context"
	"database/sql"
)

// Database is a connection to a SQL backend that runs its own schema migrations on Connect
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB

	// Ping reports whether the connection is usable; used by health checks
	Ping(ctx context.Context) error
}
