package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemaferry/schemaferry/internal/schema"
	"github.com/schemaferry/schemaferry/pkg/adapter"
)

// Secondary object creation. Every object is created individually and a
// failure is recorded against that object only; a broken view or trigger
// never aborts the run.

// createSequences creates sequence generators before the tables that use
// them. Targets without sequence support skip the step.
func (e *Engine) createSequences(ctx context.Context, s *schema.Schema, targetSchema string) int {
	if len(s.Sequences) == 0 {
		return 0
	}
	if e.dstDialect.Introspection().Sequences == "" {
		e.logger.Debug("target engine has no sequences, skipping", "target", e.dstDialect.Name)
		return 0
	}

	created := 0
	for _, seq := range s.Sequences {
		start := seq.StartValue
		if start == 0 {
			start = 1
		}
		increment := seq.Increment
		if increment == 0 {
			increment = 1
		}
		stmt := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH %d INCREMENT BY %d",
			e.dstDialect.QualifyTable(targetSchema, seq.Name), start, increment)
		if err := e.target.Exec(ctx, stmt); err != nil {
			e.recordWarning(fmt.Sprintf("failed to create sequence %s: %v", seq.Name, err))
			continue
		}
		created++
	}
	return created
}

// createViews creates views ordered so referenced views come first.
func (e *Engine) createViews(ctx context.Context, s *schema.Schema, targetSchema string) int {
	byName := make(map[string]*schema.View, len(s.Views))
	for _, v := range s.Views {
		byName[v.Name] = v
	}

	created := 0
	for _, name := range s.ViewOrder() {
		v := byName[name]
		if v.Definition == "" {
			continue
		}
		stmt := fmt.Sprintf("CREATE VIEW %s AS %s",
			e.dstDialect.QualifyTable(targetSchema, v.Name), v.Definition)
		if err := e.target.Exec(ctx, stmt); err != nil {
			e.recordWarning(fmt.Sprintf("failed to create view %s: %v", v.Name, err))
			continue
		}
		created++
	}
	return created
}

// createIndexes creates the non-system indexes of every table. Indexes the
// engine generates for constraints are skipped.
func (e *Engine) createIndexes(ctx context.Context, s *schema.Schema, targetSchema string) int {
	created := 0
	for _, name := range s.TableNames() {
		for _, idx := range s.Tables[name].Indexes {
			if schema.IsSystemIndex(idx.Name) || len(idx.Columns) == 0 {
				continue
			}

			quoted := make([]string, len(idx.Columns))
			for i, col := range idx.Columns {
				quoted[i] = e.dstDialect.Quote(col)
			}
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
				unique,
				e.dstDialect.Quote(idx.Name),
				e.dstDialect.QualifyTable(targetSchema, name),
				strings.Join(quoted, ", "))
			if err := e.target.Exec(ctx, stmt); err != nil {
				e.recordWarning(fmt.Sprintf("failed to create index %s on %s: %v", idx.Name, name, err))
				continue
			}
			created++
		}
	}
	return created
}

// createProcedures replays stored procedure definitions verbatim. Procedure
// bodies rarely survive a dialect change unedited, so failures are expected
// and recorded as warnings.
func (e *Engine) createProcedures(ctx context.Context, s *schema.Schema) int {
	created := 0
	for _, proc := range s.Procedures {
		if proc.Definition == "" {
			continue
		}
		if err := e.target.Exec(ctx, proc.Definition); err != nil {
			e.recordWarning(fmt.Sprintf("failed to create procedure %s: %v", proc.Name, err))
			continue
		}
		created++
	}
	return created
}

// createTriggers replays trigger definitions verbatim, after data load so
// the copy itself never fires them.
func (e *Engine) createTriggers(ctx context.Context, s *schema.Schema) int {
	created := 0
	for _, trig := range s.Triggers {
		if trig.Definition == "" {
			continue
		}
		if err := e.target.Exec(ctx, trig.Definition); err != nil {
			e.recordWarning(fmt.Sprintf("failed to create trigger %s: %v", trig.Name, err))
			continue
		}
		created++
	}
	return created
}

// verifyData compares per-table row counts between source and target. A
// mismatch is a warning, never an error, and verification cannot block
// completion.
func (e *Engine) verifyData(ctx context.Context, s *schema.Schema, order []string, targetSchema string) {
	for _, name := range order {
		if e.isStopped() {
			return
		}

		srcCount, err := e.countRows(ctx, e.source, e.srcDialect.QualifyTable(s.Name, name))
		if err != nil {
			e.recordWarning(fmt.Sprintf("could not count source rows for %s: %v", name, err))
			continue
		}
		dstCount, err := e.countRows(ctx, e.target, e.dstDialect.QualifyTable(targetSchema, name))
		if err != nil {
			e.recordWarning(fmt.Sprintf("could not count target rows for %s: %v", name, err))
			continue
		}
		if srcCount != dstCount {
			e.recordWarning(fmt.Sprintf("row count mismatch for %s: source=%d target=%d", name, srcCount, dstCount))
		}
	}
}

func (e *Engine) countRows(ctx context.Context, db adapter.Adapter, table string) (int64, error) {
	row := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table)
	if row == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
