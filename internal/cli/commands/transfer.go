package commands

import (
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/schemaferry/schemaferry/internal/transfer"
)

// NewTransferCommand runs a full schema and data migration.
func NewTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Migrate the source schema and data into the target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, src, err := analyzeSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := connect(ctx, cfg.Target, logger)
			if err != nil {
				return err
			}
			defer dst.Close()

			eng, err := transfer.New(src, dst, cfg.Transfer, logger)
			if err != nil {
				return err
			}

			// an interrupt requests a cooperative stop; in-flight pages finish
			go func() {
				<-ctx.Done()
				eng.Stop()
			}()

			var mu sync.Mutex
			var lastPhase transfer.Phase
			eng.OnProgress(func(p transfer.Progress) {
				mu.Lock()
				changed := p.Phase != lastPhase
				lastPhase = p.Phase
				mu.Unlock()
				if changed {
					logger.Info("progress",
						"phase", string(p.Phase),
						"tables", fmt.Sprintf("%d/%d", p.TablesCompleted, p.TotalTables),
						"rows", fmt.Sprintf("%d/%d", p.RowsTransferred, p.TotalRows))
				}
			})

			stats, runErr := eng.Run(ctx, s, cfg.Target.Schema)

			w := newTable(cmd)
			w.AppendHeader(table.Row{"Run", stats.RunID})
			w.AppendRow(table.Row{"Tables created", stats.TablesCreated})
			w.AppendRow(table.Row{"Tables transferred", stats.TablesTransferred})
			w.AppendRow(table.Row{"Rows transferred", stats.RowsTransferred})
			w.AppendRow(table.Row{"Views created", stats.ViewsCreated})
			w.AppendRow(table.Row{"Indexes created", stats.IndexesCreated})
			w.AppendRow(table.Row{"Procedures created", stats.ProceduresCreated})
			w.AppendRow(table.Row{"Triggers created", stats.TriggersCreated})
			w.AppendRow(table.Row{"Errors", len(stats.Errors)})
			w.AppendRow(table.Row{"Warnings", len(stats.Warnings)})
			w.AppendRow(table.Row{"Duration", stats.Duration.Round(time.Millisecond)})
			w.Render()

			out := cmd.OutOrStdout()
			for _, msg := range stats.Errors {
				fmt.Fprintln(out, "error:", msg)
			}
			for _, msg := range stats.Warnings {
				fmt.Fprintln(out, "warning:", msg)
			}
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.String("source-schema", "", "source schema to migrate")
	flags.String("target-schema", "", "target schema to create")
	flags.Int("batch-size", 1000, "rows per page")
	flags.Int("max-workers", 4, "concurrent table transfers in parallel mode")
	flags.Bool("parallel", false, "transfer independent tables concurrently")
	flags.Bool("continue-on-error", false, "record failures and keep going")
	flags.Bool("drop-existing", false, "drop target tables before creating them")
	flags.Bool("disable-constraints", false, "relax foreign keys during the copy")
	flags.Bool("ignore-foreign-keys", false, "create tables without foreign key clauses")
	flags.Bool("verify", true, "compare row counts after the copy")
	flags.Int("timeout-per-table", 3600, "per-table timeout in seconds")
	return cmd
}
