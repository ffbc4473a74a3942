// Package depgraph builds the table dependency graph used to order and
// parallelize migrations. Edges run from a table to the tables it
// references; levels group tables whose transfers may run concurrently.
package depgraph

import (
	"io"
	"log/slog"
	"sort"

	"github.com/schemaferry/schemaferry/internal/schema"
)

// Graph is a pure function of the table set it was built from; rebuild it
// whenever the table or foreign-key set changes.
type Graph struct {
	// Nodes maps a table to the tables it depends on.
	Nodes map[string]map[string]struct{}
	// ReverseNodes maps a table to the tables that depend on it.
	ReverseNodes map[string]map[string]struct{}
	// Cycles holds detected reference loops, each an ordered table sequence.
	Cycles [][]string
	// Levels assigns every table a depth; level 0 means no dependencies.
	// Cycle participants get maxLevel+1 as a fallback placement.
	Levels map[string]int
}

// Build constructs the graph for one schema. It never fails: an empty
// schema yields an empty graph, and any internal error during cycle or
// level analysis degrades to treating every table as independent, with a
// warning logged.
func Build(s *schema.Schema, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	g := &Graph{
		Nodes:        make(map[string]map[string]struct{}),
		ReverseNodes: make(map[string]map[string]struct{}),
		Levels:       make(map[string]int),
	}
	if s == nil || len(s.Tables) == 0 {
		return g
	}

	for name := range s.Tables {
		g.Nodes[name] = make(map[string]struct{})
		g.ReverseNodes[name] = make(map[string]struct{})
	}
	for name, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.ReferencedSchema != "" && fk.ReferencedSchema != s.Name {
				continue
			}
			if _, ok := s.Tables[fk.ReferencedTable]; !ok {
				continue
			}
			g.Nodes[name][fk.ReferencedTable] = struct{}{}
			g.ReverseNodes[fk.ReferencedTable][name] = struct{}{}
		}
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("dependency analysis failed, treating all tables as independent", "panic", r)
				g.Cycles = nil
				for name := range g.Nodes {
					g.Levels[name] = 0
				}
			}
		}()
		g.detectCycles()
		g.assignLevels()
	}()

	if len(g.Cycles) > 0 {
		logger.Warn("circular table references detected", "cycles", len(g.Cycles))
	}
	return g
}

// detectCycles runs an iterative depth-first search from every unvisited
// node. When a neighbor already on the current path reappears, the sub-path
// from its first occurrence to the current node is recorded as a cycle and
// the search from that root stops. Roots sharing visited nodes can
// under-report disjoint cycles; one reported cycle is enough to flag the
// schema and adjust level placement.
func (g *Graph) detectCycles() {
	type frame struct {
		node      string
		neighbors []string
		next      int
	}

	visited := make(map[string]bool, len(g.Nodes))
	for _, root := range g.sortedNodes() {
		if visited[root] {
			continue
		}

		stack := []frame{{node: root, neighbors: g.Dependencies(root)}}
		path := []string{root}
		onPath := map[string]int{root: 0}
		visited[root] = true
		found := false

		for len(stack) > 0 && !found {
			f := &stack[len(stack)-1]
			if f.next < len(f.neighbors) {
				n := f.neighbors[f.next]
				f.next++
				if pos, ok := onPath[n]; ok {
					cycle := make([]string, len(path)-pos)
					copy(cycle, path[pos:])
					g.Cycles = append(g.Cycles, cycle)
					found = true
					continue
				}
				if !visited[n] {
					visited[n] = true
					onPath[n] = len(path)
					path = append(path, n)
					stack = append(stack, frame{node: n, neighbors: g.Dependencies(n)})
				}
			} else {
				delete(onPath, f.node)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// assignLevels runs Kahn layering over dependency counts. Tables never
// reached (cycle participants and their transitive dependents) receive
// maxLevel+1 so every table ends up with a level.
func (g *Graph) assignLevels() {
	indegree := make(map[string]int, len(g.Nodes))
	for name, deps := range g.Nodes {
		indegree[name] = len(deps)
	}

	frontier := make([]string, 0)
	for _, name := range g.sortedNodes() {
		if indegree[name] == 0 {
			frontier = append(frontier, name)
		}
	}

	level := 0
	maxLevel := 0
	assigned := 0
	for len(frontier) > 0 {
		next := make([]string, 0)
		for _, name := range frontier {
			g.Levels[name] = level
			assigned++
			for dependent := range g.ReverseNodes[name] {
				indegree[dependent]--
				if indegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		maxLevel = level
		level++
		sort.Strings(next)
		frontier = next
	}

	if assigned < len(g.Nodes) {
		for name := range g.Nodes {
			if _, ok := g.Levels[name]; !ok {
				g.Levels[name] = maxLevel + 1
			}
		}
	}
}

// Dependencies returns the tables the given table depends on, sorted.
func (g *Graph) Dependencies(table string) []string {
	return sortedKeys(g.Nodes[table])
}

// Dependents returns the tables that depend on the given table, sorted.
func (g *Graph) Dependents(table string) []string {
	return sortedKeys(g.ReverseNodes[table])
}

// Roots returns the tables with no dependencies, sorted.
func (g *Graph) Roots() []string {
	roots := make([]string, 0)
	for name, deps := range g.Nodes {
		if len(deps) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// MaxLevel returns the highest assigned level, or 0 for an empty graph.
func (g *Graph) MaxLevel() int {
	max := 0
	for _, lvl := range g.Levels {
		if lvl > max {
			max = lvl
		}
	}
	return max
}

// HasCycles reports whether any reference loop was detected.
func (g *Graph) HasCycles() bool {
	return len(g.Cycles) > 0
}

func (g *Graph) sortedNodes() []string {
	return sortedKeys(g.Nodes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
