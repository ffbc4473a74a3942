package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/depgraph"
)

// NewAnalyzeCommand inspects the source schema and prints its tables,
// dependencies, and levels.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Inspect the source schema and its dependency graph",
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

			w := newTable(cmd)
			w.AppendHeader(table.Row{"Table", "Rows", "Level", "Depends On"})
			for _, name := range s.TableNames() {
				w.AppendRow(table.Row{
					name,
					s.Tables[name].RowCount,
					g.Levels[name],
					strings.Join(g.Dependencies(name), ", "),
				})
			}
			w.Render()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d tables, %d rows, %d views, %d sequences, %d procedures, %d triggers\n",
				len(s.Tables), s.TotalRows(), len(s.Views), len(s.Sequences),
				len(s.Procedures), len(s.Triggers))
			for _, cycle := range g.Cycles {
				fmt.Fprintf(out, "warning: circular reference: %s\n", strings.Join(cycle, " -> "))
			}
			return nil
		},
	}

	cmd.Flags().String("source-schema", "", "schema to analyze (defaults to the dialect's default schema)")
	return cmd
}
