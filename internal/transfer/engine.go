// Package transfer executes schema and data migration runs: structural DDL
// in dependency order, chunked data copy (sequential or batched parallel),
// constraint toggling, secondary object creation, and row-count
// verification, with streaming progress snapshots and cooperative stop.
package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/resolver"
	"github.com/schemaferry/schemaferry/internal/schema"
	"github.com/schemaferry/schemaferry/pkg/adapter"
	"github.com/schemaferry/schemaferry/pkg/dialect"
)

// Stats is the final result of one run. Errors and Warnings mirror the last
// progress snapshot; a non-empty error list with a nil Run error means the
// run completed under continue_on_error.
type Stats struct {
	RunID             string
	TablesCreated     int
	TablesTransferred int
	RowsTransferred   int64
	SequencesCreated  int
	ViewsCreated      int
	IndexesCreated    int
	ProceduresCreated int
	TriggersCreated   int
	Errors            []string
	Warnings          []string
	Duration          time.Duration
}

// Engine copies one schema from a source database to a target database.
// Create one per run; an engine must not be reused after Run returns.
type Engine struct {
	source     adapter.Adapter
	target     adapter.Adapter
	srcDialect *dialect.Dialect
	dstDialect *dialect.Dialect
	logger     *slog.Logger
	opts       Options

	onProgress func(Progress)

	mu       sync.Mutex
	progress Progress
	stopped  bool
}

// New builds an engine for the given source and target connections. The
// adapters must already be connected; their dialects must be registered.
func New(source, target adapter.Adapter, opts Options, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts.normalize()

	srcDialect, ok := dialect.Get(source.DialectName())
	if !ok {
		return nil, fmt.Errorf("unknown source dialect %q", source.DialectName())
	}
	dstDialect, ok := dialect.Get(target.DialectName())
	if !ok {
		return nil, fmt.Errorf("unknown target dialect %q", target.DialectName())
	}

	return &Engine{
		source:     source,
		target:     target,
		srcDialect: srcDialect,
		dstDialect: dstDialect,
		logger:     logger,
		opts:       opts,
	}, nil
}

// OnProgress registers the observer called with a snapshot copy after every
// phase transition and every page or table completion. The callback runs on
// the engine's worker goroutines; panics inside it are recovered and logged.
func (e *Engine) OnProgress(fn func(Progress)) {
	e.onProgress = fn
}

// Stop requests cooperative cancellation. No new table or page starts after
// the flag is seen; in-flight page writes finish normally. Stop only flips
// the flag and never delivers a progress notification itself, so it is safe
// to call from inside an OnProgress observer; the next worker-side update
// carries the Stopping phase out.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	e.progress.Phase = PhaseStopping
	e.progress.CurrentOperation = "stop requested, finishing in-flight work"
}

// Run migrates the schema into targetSchema on the target database. It
// returns collected stats in every case; the error is non-nil only when a
// fatal failure aborted the run.
func (e *Engine) Run(ctx context.Context, s *schema.Schema, targetSchema string) (*Stats, error) {
	start := time.Now()
	stats := &Stats{RunID: uuid.NewString()}

	if targetSchema == "" {
		targetSchema = e.dstDialect.DefaultSchema
	}

	s.ComputeDependencies()
	g := depgraph.Build(s, e.logger)
	order := resolver.LinearOrder(s, e.logger)

	e.update(func(p *Progress) {
		p.Phase = PhaseInitializing
		p.TotalTables = len(order)
		p.TotalRows = s.TotalRows()
		p.StartedAt = start
		p.CurrentOperation = fmt.Sprintf("migrating %d tables", len(order))
	})
	e.logger.Info("transfer run starting",
		"run_id", stats.RunID,
		"tables", len(order),
		"rows", s.TotalRows(),
		"source", e.srcDialect.Name,
		"target", e.dstDialect.Name)

	fail := func(err error) (*Stats, error) {
		e.update(func(p *Progress) {
			p.Phase = PhaseFailed
			p.CurrentOperation = err.Error()
		})
		e.finalize(stats, start)
		return stats, err
	}

	if e.opts.CreateSchema {
		e.setPhase(PhaseCreatingSchema, "creating target schema "+targetSchema)
		if err := e.createTargetSchema(ctx, targetSchema); err != nil {
			return fail(fmt.Errorf("failed to create schema %s: %w", targetSchema, err))
		}
	}

	if e.opts.CreateTables {
		e.setPhase(PhaseCreatingTables, "creating tables")
		stats.SequencesCreated = e.createSequences(ctx, s, targetSchema)
		created, err := e.createTables(ctx, s, order, targetSchema)
		stats.TablesCreated = created
		if err != nil {
			return fail(err)
		}
	}

	if e.opts.DisableConstraints {
		e.setPhase(PhaseDisablingConstraints, "relaxing foreign key enforcement")
		e.toggleConstraints(ctx, s, targetSchema, false)
	}

	e.setPhase(PhaseTransferringData, "transferring data")
	var err error
	if e.opts.ParallelTables {
		err = e.transferParallel(ctx, s, g, targetSchema)
	} else {
		err = e.transferSequential(ctx, s, order, targetSchema)
	}
	if err != nil {
		if e.opts.DisableConstraints {
			e.toggleConstraints(ctx, s, targetSchema, true)
		}
		return fail(err)
	}

	if e.opts.DisableConstraints && !e.isStopped() {
		e.setPhase(PhaseEnablingConstraints, "restoring foreign key enforcement")
		e.toggleConstraints(ctx, s, targetSchema, true)
	}

	if e.opts.CreateTables && !e.isStopped() {
		e.setPhase(PhaseCreatingObjects, "creating views, indexes, procedures, triggers")
		stats.ViewsCreated = e.createViews(ctx, s, targetSchema)
		stats.IndexesCreated = e.createIndexes(ctx, s, targetSchema)
		stats.ProceduresCreated = e.createProcedures(ctx, s)
		stats.TriggersCreated = e.createTriggers(ctx, s)
	}

	if e.opts.VerifyData && !e.isStopped() {
		e.setPhase(PhaseVerifyingData, "verifying row counts")
		e.verifyData(ctx, s, order, targetSchema)
	}

	if e.isStopped() {
		e.setPhase(PhaseStopped, "transfer stopped")
	} else {
		e.setPhase(PhaseCompleted, "transfer completed")
	}
	e.finalize(stats, start)

	e.logger.Info("transfer run finished",
		"run_id", stats.RunID,
		"tables_transferred", stats.TablesTransferred,
		"rows_transferred", stats.RowsTransferred,
		"errors", len(stats.Errors),
		"warnings", len(stats.Warnings),
		"duration", stats.Duration)
	return stats, nil
}

// finalize copies the shared progress tallies into the result.
func (e *Engine) finalize(stats *Stats, start time.Time) {
	e.mu.Lock()
	stats.TablesTransferred = e.progress.TablesCompleted
	stats.RowsTransferred = e.progress.RowsTransferred
	stats.Errors = append([]string(nil), e.progress.Errors...)
	stats.Warnings = append([]string(nil), e.progress.Warnings...)
	e.mu.Unlock()
	stats.Duration = time.Since(start)
}

// isStopped reads the cooperative stop flag.
func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// update applies fn to the progress under lock and delivers a snapshot to
// the observer. Workers hold the lock only for the field update, never
// during I/O.
func (e *Engine) update(fn func(*Progress)) {
	e.mu.Lock()
	fn(&e.progress)
	snap := e.progress.clone()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) setPhase(phase Phase, operation string) {
	e.update(func(p *Progress) {
		// a requested stop wins over later transitions
		if e.stopped && phase != PhaseStopped && phase != PhaseFailed {
			return
		}
		p.Phase = phase
		p.CurrentOperation = operation
	})
	e.logger.Debug("phase transition", "phase", string(phase))
}

func (e *Engine) recordError(msg string) {
	e.logger.Error(msg)
	e.update(func(p *Progress) {
		p.Errors = append(p.Errors, msg)
	})
}

func (e *Engine) recordWarning(msg string) {
	e.logger.Warn(msg)
	e.update(func(p *Progress) {
		p.Warnings = append(p.Warnings, msg)
	})
}

// notify delivers one snapshot to the observer. Observer failures are
// contained here and never propagate into the run.
func (e *Engine) notify(snap Progress) {
	if e.onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("progress observer panicked", "panic", r)
		}
	}()
	e.onProgress(snap)
}
