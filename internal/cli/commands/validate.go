package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/resolver"
)

// NewValidateCommand checks that a dependency-correct insertion order
// exists for the source schema and reports cycles and violations.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the migration order for the source schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log)

			ctx := cmd.Context()
			s, src, err := analyzeSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			g := depgraph.Build(s, logger)
			order := resolver.LinearOrder(s, logger)
			result := resolver.Validate(order, s, g)

			out := cmd.OutOrStdout()
			if len(result.Issues) > 0 {
				w := newTable(cmd)
				w.AppendHeader(table.Row{"Issue", "Table", "Dependency"})
				for _, issue := range result.Issues {
					w.AppendRow(table.Row{issue.Type, issue.Table, issue.Dependency})
				}
				w.Render()
			}

			fmt.Fprintf(out, "tables: %d  rows: %d  levels: %d  cycles: %d  estimated: %.1fs\n",
				result.Stats.TotalTables,
				result.Stats.TotalRows,
				result.Stats.Levels,
				result.Stats.CyclesDetected,
				result.Stats.EstimatedTime)

			if !result.Valid {
				return fmt.Errorf("migration order is invalid (%d issues)", len(result.Issues))
			}
			fmt.Fprintln(out, "migration order is valid")
			return nil
		},
	}

	cmd.Flags().String("source-schema", "", "schema to validate")
	return cmd
}
