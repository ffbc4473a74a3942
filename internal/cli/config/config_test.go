package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemaferry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Transfer.BatchSize)
	assert.Equal(t, 4, cfg.Transfer.MaxWorkers)
	assert.True(t, cfg.Transfer.CreateSchema)
	assert.True(t, cfg.Transfer.VerifyData)
	assert.Equal(t, 3600, cfg.Transfer.TimeoutPerTable)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
source:
  type: postgres
  host: src.example.com
  port: 5432
  database: shop
target:
  type: mysql
  database: shop_copy
transfer:
  batch_size: 250
  parallel_tables: true
log:
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Source.Type)
	assert.Equal(t, "src.example.com", cfg.Source.Host)
	assert.Equal(t, "mysql", cfg.Target.Type)
	assert.Equal(t, 250, cfg.Transfer.BatchSize)
	assert.True(t, cfg.Transfer.ParallelTables)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched defaults survive
	assert.Equal(t, 4, cfg.Transfer.MaxWorkers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
source:
  host: from-file
transfer:
  batch_size: 250
`)
	t.Setenv("SCHEMAFERRY_SOURCE__HOST", "from-env")
	t.Setenv("SCHEMAFERRY_TRANSFER__BATCH_SIZE", "500")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Source.Host)
	assert.Equal(t, 500, cfg.Transfer.BatchSize)
}

func TestFlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, `
transfer:
  batch_size: 250
`)
	t.Setenv("SCHEMAFERRY_TRANSFER__BATCH_SIZE", "500")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("batch-size", 1000, "")
	flags.Bool("parallel", false, "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--batch-size=750", "--parallel"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 750, cfg.Transfer.BatchSize)
	assert.True(t, cfg.Transfer.ParallelTables)
}

func TestUnchangedFlagDoesNotMaskFile(t *testing.T) {
	path := writeConfig(t, `
transfer:
  batch_size: 250
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("batch-size", 1000, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Transfer.BatchSize)
}
