// Package resolver produces and validates linear table insertion orders.
// It complements the planner: where batches express what may run in
// parallel, the resolver answers what one worker should do first.
package resolver

import (
	"io"
	"log/slog"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/planner"
	"github.com/schemaferry/schemaferry/internal/schema"
)

// LinearOrder returns a total ordering in which every table appears after
// all of its dependencies. When a cycle stalls the ordering, the remaining
// tables are appended in deterministic sequence and a warning is logged;
// the call never deadlocks and always covers every table.
func LinearOrder(s *schema.Schema, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	order, unresolved := s.InsertionOrder()
	if len(unresolved) > 0 {
		logger.Warn("circular dependencies prevent a strict insertion order",
			"unresolved", unresolved)
	}
	return order
}

// Tables above this row count are deferred behind smaller ones when
// OptimizeOrder is called without an explicit threshold.
const defaultSizeThreshold = 1_000_000

// OptimizeOrder produces a transfer order biased by the caller's
// preferences while still honoring the dependency graph. Priority tables
// are pulled to the front when given; otherwise tables at or below
// sizeThreshold rows go before larger ones, so small lookup tables land
// early in the run. A sizeThreshold of zero or less selects the default.
// The result always covers every table and satisfies the same guarantees
// as RespectDependencies.
func OptimizeOrder(s *schema.Schema, g *depgraph.Graph, priority []string, sizeThreshold int64, logger *slog.Logger) []string {
	base := LinearOrder(s, logger)

	if len(priority) > 0 {
		prioritized := make(map[string]struct{}, len(priority))
		for _, name := range priority {
			prioritized[name] = struct{}{}
		}
		front := make([]string, 0, len(priority))
		rest := make([]string, 0, len(base))
		for _, name := range base {
			if _, ok := prioritized[name]; ok {
				front = append(front, name)
			} else {
				rest = append(rest, name)
			}
		}
		return RespectDependencies(append(front, rest...), g, logger)
	}

	if sizeThreshold <= 0 {
		sizeThreshold = defaultSizeThreshold
	}
	small := make([]string, 0, len(base))
	large := make([]string, 0)
	for _, name := range base {
		if t, ok := s.Tables[name]; ok && t.RowCount > sizeThreshold {
			large = append(large, name)
		} else {
			small = append(small, name)
		}
	}
	return RespectDependencies(append(small, large...), g, logger)
}

// RespectDependencies reorders a caller-proposed table sequence just enough
// to satisfy the dependency graph: it repeatedly places the first
// not-yet-placed table whose dependencies are all placed, preserving the
// proposal's preference order otherwise. When no table is ready (cycle),
// the first remaining table is force-placed and a warning logged.
func RespectDependencies(proposed []string, g *depgraph.Graph, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	placed := make(map[string]struct{}, len(proposed))
	result := make([]string, 0, len(proposed))
	remaining := make([]string, len(proposed))
	copy(remaining, proposed)

	for len(remaining) > 0 {
		picked := -1
		for i, table := range remaining {
			if ready(table, g, placed) {
				picked = i
				break
			}
		}
		if picked == -1 {
			logger.Warn("forcing table placement despite unresolved dependencies",
				"table", remaining[0])
			picked = 0
		}
		table := remaining[picked]
		result = append(result, table)
		placed[table] = struct{}{}
		remaining = append(remaining[:picked], remaining[picked+1:]...)
	}
	return result
}

// ready reports whether every dependency of table is already placed.
// Dependencies outside the proposal (not in the graph) do not block.
func ready(table string, g *depgraph.Graph, placed map[string]struct{}) bool {
	for dep := range g.Nodes[table] {
		if dep == table {
			continue
		}
		if _, ok := placed[dep]; !ok {
			return false
		}
	}
	return true
}

// Issue types reported by Validate.
const (
	IssueMissingTable        = "missing_table"
	IssueDependencyViolation = "dependency_violation"
)

// Issue records one validation finding.
type Issue struct {
	Type  string
	Table string
	// Dependency names the table that should have preceded Table, for
	// dependency violations.
	Dependency string
}

// Stats summarize the schema and graph under validation.
type Stats struct {
	TotalTables    int
	TotalRows      int64
	EstimatedTime  float64
	CyclesDetected int
	Levels         int
}

// ValidationResult is always returned, even for hopeless orders; callers
// branch on Valid and inspect Issues.
type ValidationResult struct {
	Valid  bool
	Issues []Issue
	Stats  Stats
}

// Validate checks a proposed order against the schema and graph: every
// table must exist, and every dependency must appear strictly earlier in
// the order. It never fails; all findings are accumulated as issues.
func Validate(order []string, s *schema.Schema, g *depgraph.Graph) *ValidationResult {
	result := &ValidationResult{
		Stats: Stats{
			TotalTables:    len(s.Tables),
			TotalRows:      s.TotalRows(),
			EstimatedTime:  planner.EstimateTime(s, order),
			CyclesDetected: len(g.Cycles),
			Levels:         g.MaxLevel() + 1,
		},
	}
	if len(s.Tables) == 0 {
		result.Stats.Levels = 0
	}

	position := make(map[string]int, len(order))
	for i, table := range order {
		position[table] = i
	}

	for i, table := range order {
		if _, ok := s.Tables[table]; !ok {
			result.Issues = append(result.Issues, Issue{Type: IssueMissingTable, Table: table})
			continue
		}
		for dep := range g.Nodes[table] {
			pos, placed := position[dep]
			if !placed || pos >= i {
				result.Issues = append(result.Issues, Issue{
					Type:       IssueDependencyViolation,
					Table:      table,
					Dependency: dep,
				})
			}
		}
	}

	result.Valid = len(result.Issues) == 0
	return result
}
