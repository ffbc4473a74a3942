// Package schema defines the normalized database object model produced by
// introspection and consumed by the graph builder, planner, and transfer
// engine. Objects are built once per analysis pass; only the dependency
// calculation step mutates tables afterward.
package schema

import "sort"

// Column describes one table column.
type Column struct {
	Name      string
	DataType  string
	Nullable  bool
	Default   string
	Length    int
	Precision int
	Scale     int
}

// ForeignKey describes one foreign-key constraint on a table. A foreign key
// contributes a dependency edge only when it references a table inside the
// analyzed schema; keys pointing elsewhere still inform DDL generation.
type ForeignKey struct {
	Name             string
	Column           string
	ReferencedSchema string
	ReferencedTable  string
	ReferencedColumn string
}

// Index describes one index on a table. Indexes whose names carry the
// PK_/FK_/SYS_ prefixes are engine-generated and excluded from creation
// order.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// Table is identified by its schema-qualified name. Dependencies and
// Dependents are derived from the foreign-key list by ComputeDependencies
// and must be recomputed whenever the key list changes.
type Table struct {
	Schema      string
	Name        string
	Columns     []Column
	PrimaryKeys []string
	ForeignKeys []ForeignKey
	Indexes     []Index
	RowCount    int64

	Dependencies map[string]struct{}
	Dependents   map[string]struct{}
}

// View describes one view. DependsOn lists other views this view's
// definition references, used to order view creation.
type View struct {
	Name       string
	Definition string
	DependsOn  []string
}

// Sequence describes one sequence generator.
type Sequence struct {
	Name       string
	StartValue int64
	Increment  int64
}

// Procedure describes one stored procedure or function.
type Procedure struct {
	Name       string
	Definition string
}

// Trigger describes one trigger.
type Trigger struct {
	Name       string
	Table      string
	Definition string
}

// Schema holds every analyzed object in one database schema.
type Schema struct {
	Name       string
	Tables     map[string]*Table
	Views      []*View
	Sequences  []*Sequence
	Procedures []*Procedure
	Triggers   []*Trigger
}

// New returns an empty schema with the given name.
func New(name string) *Schema {
	return &Schema{
		Name:   name,
		Tables: make(map[string]*Table),
	}
}

// TableNames returns all table names in sorted order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalRows sums the row-count snapshots of every table.
func (s *Schema) TotalRows() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.RowCount
	}
	return total
}

// ComputeDependencies recomputes Dependencies and Dependents on every table
// from the foreign-key lists. A key adds an edge only when it references a
// table in this schema that is present in the table set; an empty referenced
// schema is treated as this schema (engines without schema support).
func (s *Schema) ComputeDependencies() {
	for _, t := range s.Tables {
		t.Dependencies = make(map[string]struct{})
		t.Dependents = make(map[string]struct{})
	}
	for name, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if fk.ReferencedSchema != "" && fk.ReferencedSchema != s.Name {
				continue
			}
			ref, ok := s.Tables[fk.ReferencedTable]
			if !ok {
				continue
			}
			t.Dependencies[fk.ReferencedTable] = struct{}{}
			ref.Dependents[name] = struct{}{}
		}
	}
}

// InsertionOrder computes a total table ordering in which every table
// appears after all of its dependencies, working directly off the derived
// Dependencies sets. Tables that cannot be ordered (cycle participants) are
// returned in unresolved and appended to the tail of order in sorted-name
// sequence so the result always covers every table.
func (s *Schema) InsertionOrder() (order []string, unresolved []string) {
	indegree := make(map[string]int, len(s.Tables))
	for name, t := range s.Tables {
		indegree[name] = len(t.Dependencies)
	}

	order = make([]string, 0, len(s.Tables))
	frontier := make([]string, 0)
	for _, name := range s.TableNames() {
		if indegree[name] == 0 {
			frontier = append(frontier, name)
		}
	}

	for len(frontier) > 0 {
		next := make([]string, 0)
		for _, name := range frontier {
			order = append(order, name)
			for dep := range s.Tables[name].Dependents {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}

	if len(order) < len(s.Tables) {
		placed := make(map[string]struct{}, len(order))
		for _, name := range order {
			placed[name] = struct{}{}
		}
		for _, name := range s.TableNames() {
			if _, ok := placed[name]; !ok {
				unresolved = append(unresolved, name)
			}
		}
		order = append(order, unresolved...)
	}
	return order, unresolved
}
