// Package config loads schemaferry's configuration. Sources are merged in
// fixed precedence: command-line flags over environment variables over the
// YAML config file over built-in defaults.
package config

import (
	"github.com/schemaferry/schemaferry/internal/transfer"
	"github.com/schemaferry/schemaferry/pkg/adapter"
)

// DefaultFile is the config file name looked up in the working directory
// when no --config flag is given.
const DefaultFile = "schemaferry.yaml"

// EnvPrefix scopes the environment variables read into the config. A
// double underscore separates nesting levels, so SCHEMAFERRY_SOURCE__HOST
// sets source.host.
const EnvPrefix = "SCHEMAFERRY_"

// Config is the full application configuration.
type Config struct {
	Source   adapter.Config   `koanf:"source"`
	Target   adapter.Config   `koanf:"target"`
	Transfer transfer.Options `koanf:"transfer"`
	Log      LogConfig        `koanf:"log"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// defaults returns the built-in configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"transfer.batch_size":        1000,
		"transfer.max_workers":       4,
		"transfer.create_schema":     true,
		"transfer.create_tables":     true,
		"transfer.verify_data":       true,
		"transfer.timeout_per_table": 3600,
		"log.level":                  "info",
		"log.format":                 "text",
	}
}

// flagKeys maps command-line flag names onto config keys. Flags not listed
// here are CLI-local and never merged into the config.
var flagKeys = map[string]string{
	"log-level":           "log.level",
	"log-format":          "log.format",
	"source-schema":       "source.schema",
	"target-schema":       "target.schema",
	"batch-size":          "transfer.batch_size",
	"max-workers":         "transfer.max_workers",
	"parallel":            "transfer.parallel_tables",
	"continue-on-error":   "transfer.continue_on_error",
	"drop-existing":       "transfer.drop_existing_tables",
	"disable-constraints": "transfer.disable_constraints",
	"ignore-foreign-keys": "transfer.ignore_foreign_keys",
	"verify":              "transfer.verify_data",
	"timeout-per-table":   "transfer.timeout_per_table",
}
