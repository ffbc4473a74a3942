// Package adapter provides the database connection contract used by the
// migration engine. Concrete adapter implementations live in pkg/adapters/
// subdirectories and register themselves via init().
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the settings needed to connect to one database.
type Config struct {
	Type     string `koanf:"type"` // postgres, mysql, sqlite
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"` // database name, or file path for sqlite
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`

	// Options holds driver-specific settings (e.g. sslmode for postgres).
	Options map[string]string `koanf:"options"`
}

// Adapter is the interface every database adapter implements. Adapters are
// created through the registry and passed explicitly to the components that
// need them; there is no process-wide connection table.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRow executes a statement expected to return at most one row.
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row

	// DialectName returns the name of the SQL dialect this adapter speaks.
	DialectName() string
}
