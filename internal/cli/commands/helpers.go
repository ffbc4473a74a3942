// Package commands implements the schemaferry subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/cli/config"
	"github.com/schemaferry/schemaferry/internal/introspect"
	"github.com/schemaferry/schemaferry/internal/schema"
	"github.com/schemaferry/schemaferry/pkg/adapter"
)

// loadConfig reads the merged configuration using the command's flags as
// the highest-precedence layer.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

// newLogger builds the slog logger per the log config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// connect creates and connects an adapter for one endpoint.
func connect(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (adapter.Adapter, error) {
	a, err := adapter.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}
	return a, nil
}

// analyzeSource connects to the source database and builds its schema
// model. The caller owns closing the returned adapter.
func analyzeSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*schema.Schema, adapter.Adapter, error) {
	src, err := connect(ctx, cfg.Source, logger)
	if err != nil {
		return nil, nil, err
	}

	analyzer, err := introspect.New(src, logger)
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	s, err := analyzer.AnalyzeSchema(ctx, cfg.Source.Schema, introspect.DefaultOptions())
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	return s, src, nil
}

// newTable returns a go-pretty writer in the house style, mirrored to the
// command's stdout.
func newTable(cmd *cobra.Command) table.Writer {
	w := table.NewWriter()
	w.SetOutputMirror(cmd.OutOrStdout())
	w.SetStyle(table.StyleLight)
	return w
}
