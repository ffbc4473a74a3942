// Package mysql provides a MySQL adapter backed by go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/go-sql-driver/mysql" // registers the mysql database/sql driver
	"github.com/schemaferry/schemaferry/pkg/adapter"
)

// Adapter implements adapter.Adapter for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "mysql"
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDSN constructs a go-sql-driver connection string:
// user:pass@tcp(host:port)/dbname?parseTime=true
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	cred := cfg.Username
	if cfg.Password != "" {
		cred += ":" + cfg.Password
	}

	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, host, port, cfg.Database)
	for k, v := range cfg.Options {
		dsn += fmt.Sprintf("&%s=%s", k, v)
	}
	return dsn
}

func init() {
	adapter.Register("mysql", func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}
