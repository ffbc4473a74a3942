package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/planner"
	"github.com/schemaferry/schemaferry/internal/resolver"
)

// NewPlanCommand prints the batch plan a parallel transfer would follow.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the batch plan for a transfer",
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
			batches := planner.CreateBatches(s, g, cfg.Transfer.MaxWorkers)

			w := newTable(cmd)
			w.AppendHeader(table.Row{"Batch", "Level", "Tables", "Rows", "Est. Seconds"})
			for i, b := range batches {
				w.AppendRow(table.Row{
					i + 1,
					b.Level,
					strings.Join(b.Tables, ", "),
					b.TotalRows,
					fmt.Sprintf("%.1f", b.EstimatedTime),
				})
			}
			w.Render()

			order := resolver.LinearOrder(s, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "%d batches, estimated %.1fs total\n",
				len(batches), planner.EstimateTime(s, order))
			return nil
		},
	}

	cmd.Flags().String("source-schema", "", "schema to plan for")
	cmd.Flags().Int("max-workers", 4, "tables per batch / concurrent workers")
	return cmd
}
