// Package cli wires the schemaferry command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/cli/commands"

	// adapters and dialects register themselves on import
	_ "github.com/schemaferry/schemaferry/pkg/adapters/mysql"
	_ "github.com/schemaferry/schemaferry/pkg/adapters/postgres"
	_ "github.com/schemaferry/schemaferry/pkg/adapters/sqlite"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/mssql"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/mysql"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/oracle"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/postgres"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/sqlite"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCommand builds the schemaferry command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "schemaferry",
		Short: "Migrate schemas and data between database engines",
		Long: `schemaferry migrates a relational schema and its data from one
database engine to another, resolving foreign-key dependencies into a safe
creation and insertion order and copying data in chunked, resumable pages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default schemaferry.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: text or json")

	root.AddCommand(
		commands.NewAnalyzeCommand(),
		commands.NewPlanCommand(),
		commands.NewValidateCommand(),
		commands.NewTransferCommand(),
		commands.NewVersionCommand(version),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
