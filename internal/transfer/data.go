package transfer

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/planner"
	"github.com/schemaferry/schemaferry/internal/schema"
)

// transferSequential copies tables one at a time in dependency order.
func (e *Engine) transferSequential(ctx context.Context, s *schema.Schema, order []string, targetSchema string) error {
	for _, name := range order {
		if e.isStopped() {
			return nil
		}
		done, err := e.transferTable(ctx, s, name, targetSchema)
		if err != nil {
			e.recordError(fmt.Sprintf("table %s: %v", name, err))
			if !e.opts.ContinueOnError {
				return fmt.Errorf("transfer of table %s failed: %w", name, err)
			}
			continue
		}
		if !done {
			// stopped mid-copy; the table is partial and does not count
			return nil
		}
		e.update(func(p *Progress) {
			p.TablesCompleted++
		})
	}
	return nil
}

// transferParallel copies tables batch by batch. Batches are consumed in
// strict level order; within one batch up to MaxWorkers tables run
// concurrently. A batch is always drained before the next one starts, so a
// dependent table never begins before its dependency's batch finished.
func (e *Engine) transferParallel(ctx context.Context, s *schema.Schema, g *depgraph.Graph, targetSchema string) error {
	batches := planner.CreateBatches(s, g, e.opts.MaxWorkers)

	for _, batch := range batches {
		if e.isStopped() {
			return nil
		}
		e.update(func(p *Progress) {
			p.CurrentOperation = fmt.Sprintf("transferring level %d batch (%d tables)", batch.Level, len(batch.Tables))
		})

		var failed atomic.Bool
		grp := new(errgroup.Group)
		grp.SetLimit(e.opts.MaxWorkers)

		for _, name := range batch.Tables {
			name := name
			grp.Go(func() error {
				// a failure or stop skips tables not yet started;
				// in-flight workers always run to completion
				if e.isStopped() || failed.Load() {
					return nil
				}
				done, err := e.transferTable(ctx, s, name, targetSchema)
				if err != nil {
					e.recordError(fmt.Sprintf("table %s: %v", name, err))
					if !e.opts.ContinueOnError {
						failed.Store(true)
						return fmt.Errorf("transfer of table %s failed: %w", name, err)
					}
					return nil
				}
				if !done {
					return nil
				}
				e.update(func(p *Progress) {
					p.TablesCompleted++
				})
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// transferTable copies one table page by page, in ascending offset order.
// Paging stops when a page comes back smaller than the batch size. The
// per-table timeout turns a stalled copy into a table failure without
// force-closing the connection. done is false when a cooperative stop
// interrupted the copy; a partially copied table is never reported as
// transferred.
func (e *Engine) transferTable(ctx context.Context, s *schema.Schema, name string, targetSchema string) (done bool, err error) {
	tctx, cancel := context.WithTimeout(ctx, e.opts.tableTimeout())
	defer cancel()

	t := s.Tables[name]
	e.update(func(p *Progress) {
		p.CurrentTable = name
		p.CurrentOperation = fmt.Sprintf("copying %s (%d rows)", name, t.RowCount)
	})

	srcTable := e.srcDialect.QualifyTable(s.Name, name)
	dstTable := e.dstDialect.QualifyTable(targetSchema, name)

	offset := 0
	for {
		if e.isStopped() {
			return false, nil
		}

		page, columns, err := e.readPage(tctx, srcTable, offset)
		if err != nil {
			return false, fmt.Errorf("read at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		if err := e.writePage(tctx, dstTable, columns, page); err != nil {
			return false, fmt.Errorf("write at offset %d: %w", offset, err)
		}
		e.addRows(int64(len(page)))

		if len(page) < e.opts.BatchSize {
			break
		}
		offset += e.opts.BatchSize
	}
	return true, nil
}

// readPage reads one window of rows from the source table.
func (e *Engine) readPage(ctx context.Context, srcTable string, offset int) ([][]any, []string, error) {
	rows, err := e.source.Query(ctx, e.srcDialect.PageSQL(srcTable, e.opts.BatchSize, offset))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	page := make([][]any, 0, e.opts.BatchSize)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		page = append(page, values)
	}
	return page, columns, rows.Err()
}

// writePage appends one page to the target table with a single multi-row
// INSERT.
func (e *Engine) writePage(ctx context.Context, dstTable string, columns []string, page [][]any) error {
	stmt := e.buildInsert(dstTable, columns, len(page))
	args := make([]any, 0, len(page)*len(columns))
	for _, row := range page {
		args = append(args, row...)
	}
	return e.target.Exec(ctx, stmt, args...)
}

// buildInsert renders a multi-row INSERT with the target dialect's
// placeholder style.
func (e *Engine) buildInsert(dstTable string, columns []string, rowCount int) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = e.dstDialect.Quote(col)
	}

	tuples := make([]string, rowCount)
	n := 1
	for r := 0; r < rowCount; r++ {
		placeholders := make([]string, len(columns))
		for c := range columns {
			placeholders[c] = e.dstDialect.FormatPlaceholder(n)
			n++
		}
		tuples[r] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		dstTable, strings.Join(quoted, ", "), strings.Join(tuples, ", "))
}

// addRows advances the transferred row tally and refreshes the remaining
// time estimate from the observed throughput.
func (e *Engine) addRows(n int64) {
	e.update(func(p *Progress) {
		p.RowsTransferred += n
		elapsed := time.Since(p.StartedAt).Seconds()
		if p.RowsTransferred > 0 && elapsed > 0 && p.TotalRows > p.RowsTransferred {
			perRow := elapsed / float64(p.RowsTransferred)
			p.RemainingSeconds = perRow * float64(p.TotalRows-p.RowsTransferred)
		} else {
			p.RemainingSeconds = 0
		}
	})
}
