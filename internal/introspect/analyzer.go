// Package introspect reads database catalogs through an adapter and builds
// the normalized schema model. Every per-object read is fallible in
// isolation: a table whose catalog entries cannot be read is logged and
// excluded, never aborting the whole scan.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/schemaferry/schemaferry/internal/schema"
	"github.com/schemaferry/schemaferry/pkg/adapter"
	"github.com/schemaferry/schemaferry/pkg/dialect"
)

// Options selects which object kinds an analysis pass collects. Tables and
// their keys are always collected.
type Options struct {
	IncludeViews      bool
	IncludeSequences  bool
	IncludeIndexes    bool
	IncludeProcedures bool
	IncludeTriggers   bool
	RowCounts         bool
}

// DefaultOptions collects everything.
func DefaultOptions() Options {
	return Options{
		IncludeViews:      true,
		IncludeSequences:  true,
		IncludeIndexes:    true,
		IncludeProcedures: true,
		IncludeTriggers:   true,
		RowCounts:         true,
	}
}

// Analyzer reads one database's catalog.
type Analyzer struct {
	db     adapter.Adapter
	d      *dialect.Dialect
	logger *slog.Logger
}

// New builds an analyzer over a connected adapter.
func New(db adapter.Adapter, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d, ok := dialect.Get(db.DialectName())
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q", db.DialectName())
	}
	return &Analyzer{db: db, d: d, logger: logger}, nil
}

// Tables lists the base table names in a schema, sorted.
func (a *Analyzer) Tables(ctx context.Context, schemaName string) ([]string, error) {
	query := a.d.Introspection().Tables
	if query == "" {
		return a.pragmaTables(ctx)
	}

	rows, err := a.db.Query(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schemaName, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// TableInfo reads one table's columns, keys, and, when withRowCount is
// set, its row count. A failed row count degrades to zero with a warning;
// key reads on engines without the corresponding catalog query yield empty
// lists.
func (a *Analyzer) TableInfo(ctx context.Context, schemaName, table string, withRowCount bool) (*schema.Table, error) {
	t := &schema.Table{Schema: schemaName, Name: table}

	if a.d.Introspection().Columns == "" {
		// pragma-based catalog (SQLite)
		var err error
		if t.Columns, t.PrimaryKeys, err = a.pragmaTableInfo(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		if t.ForeignKeys, err = a.pragmaForeignKeys(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
	} else {
		columns, err := a.columns(ctx, schemaName, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		t.Columns = columns

		if t.PrimaryKeys, err = a.primaryKeys(ctx, schemaName, table); err != nil {
			return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
		}
		if t.ForeignKeys, err = a.foreignKeys(ctx, schemaName, table); err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
	}

	if withRowCount {
		count, err := a.rowCount(ctx, schemaName, table)
		if err != nil {
			a.logger.Warn("row count unavailable, assuming empty", "table", table, "error", err)
			count = 0
		}
		t.RowCount = count
	}
	return t, nil
}

// AnalyzeSchema builds the full schema model for one schema name.
func (a *Analyzer) AnalyzeSchema(ctx context.Context, schemaName string, opts Options) (*schema.Schema, error) {
	if schemaName == "" {
		schemaName = a.d.DefaultSchema
	}

	names, err := a.Tables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	s := schema.New(schemaName)
	for _, name := range names {
		t, err := a.TableInfo(ctx, schemaName, name, opts.RowCounts)
		if err != nil {
			a.logger.Warn("excluding table from analysis", "table", name, "error", err)
			continue
		}
		s.Tables[name] = t
	}
	s.ComputeDependencies()

	if opts.IncludeIndexes {
		if err := a.attachIndexes(ctx, s); err != nil {
			a.logger.Warn("index introspection failed", "error", err)
		}
	}
	if opts.IncludeViews {
		if err := a.collectViews(ctx, s); err != nil {
			a.logger.Warn("view introspection failed", "error", err)
		}
	}
	if opts.IncludeSequences {
		if err := a.collectSequences(ctx, s); err != nil {
			a.logger.Warn("sequence introspection failed", "error", err)
		}
	}
	if opts.IncludeProcedures {
		if err := a.collectProcedures(ctx, s); err != nil {
			a.logger.Warn("procedure introspection failed", "error", err)
		}
	}
	if opts.IncludeTriggers {
		if err := a.collectTriggers(ctx, s); err != nil {
			a.logger.Warn("trigger introspection failed", "error", err)
		}
	}

	a.logger.Info("schema analyzed",
		"schema", schemaName,
		"tables", len(s.Tables),
		"views", len(s.Views),
		"sequences", len(s.Sequences),
		"procedures", len(s.Procedures),
		"triggers", len(s.Triggers),
		"rows", s.TotalRows())
	return s, nil
}

func (a *Analyzer) columns(ctx context.Context, schemaName, table string) ([]schema.Column, error) {
	query := a.d.Introspection().Columns
	rows, err := a.db.Query(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]schema.Column, 0)
	for rows.Next() {
		var (
			name, dataType    string
			nullable          string
			def               sql.NullString
			length, prec, scl sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &nullable, &def, &length, &prec, &scl); err != nil {
			return nil, err
		}
		columns = append(columns, schema.Column{
			Name:      name,
			DataType:  dataType,
			Nullable:  strings.EqualFold(nullable, "YES") || strings.EqualFold(nullable, "Y"),
			Default:   def.String,
			Length:    int(length.Int64),
			Precision: int(prec.Int64),
			Scale:     int(scl.Int64),
		})
	}
	return columns, rows.Err()
}

func (a *Analyzer) primaryKeys(ctx context.Context, schemaName, table string) ([]string, error) {
	query := a.d.Introspection().PrimaryKeys
	if query == "" {
		return nil, nil
	}

	rows, err := a.db.Query(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys = append(keys, name)
	}
	return keys, rows.Err()
}

func (a *Analyzer) foreignKeys(ctx context.Context, schemaName, table string) ([]schema.ForeignKey, error) {
	query := a.d.Introspection().ForeignKeys
	if query == "" {
		return nil, nil
	}

	rows, err := a.db.Query(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fks := make([]schema.ForeignKey, 0)
	for rows.Next() {
		var (
			column, refTable, refColumn string
			refSchema, name             sql.NullString
		)
		if err := rows.Scan(&column, &refSchema, &refTable, &refColumn, &name); err != nil {
			return nil, err
		}
		fks = append(fks, schema.ForeignKey{
			Name:             name.String,
			Column:           column,
			ReferencedSchema: refSchema.String,
			ReferencedTable:  refTable,
			ReferencedColumn: refColumn,
		})
	}
	return fks, rows.Err()
}

func (a *Analyzer) rowCount(ctx context.Context, schemaName, table string) (int64, error) {
	row := a.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+a.d.QualifyTable(schemaName, table))
	if row == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// attachIndexes reads the schema-wide index catalog and attaches each index
// to its table.
func (a *Analyzer) attachIndexes(ctx context.Context, s *schema.Schema) error {
	query := a.d.Introspection().Indexes
	if query == "" {
		return nil
	}

	rows, err := a.db.Query(ctx, query, s.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, table, definition string
		if err := rows.Scan(&name, &table, &definition); err != nil {
			return err
		}
		t, ok := s.Tables[table]
		if !ok {
			continue
		}
		t.Indexes = append(t.Indexes, schema.Index{
			Name:    name,
			Table:   table,
			Columns: indexColumns(definition),
			Unique:  strings.Contains(strings.ToUpper(definition), "UNIQUE INDEX"),
		})
	}
	return rows.Err()
}

// indexColumns extracts the column list from a CREATE INDEX definition. An
// empty definition (engines that do not expose one) yields no columns.
func indexColumns(definition string) []string {
	open := strings.LastIndex(definition, "(")
	end := strings.LastIndex(definition, ")")
	if open == -1 || end <= open {
		return nil
	}
	parts := strings.Split(definition[open+1:end], ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		col := strings.Trim(strings.TrimSpace(p), `"`)
		if col != "" {
			columns = append(columns, col)
		}
	}
	return columns
}

func (a *Analyzer) collectViews(ctx context.Context, s *schema.Schema) error {
	query := a.d.Introspection().Views
	if query == "" {
		return nil
	}

	rows, err := a.db.Query(ctx, query, s.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var definition sql.NullString
		if err := rows.Scan(&name, &definition); err != nil {
			return err
		}
		s.Views = append(s.Views, &schema.View{Name: name, Definition: definition.String})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// wire up view-to-view references from the definitions
	for _, v := range s.Views {
		def := strings.ToLower(v.Definition)
		for _, other := range s.Views {
			if other.Name == v.Name {
				continue
			}
			if strings.Contains(def, strings.ToLower(other.Name)) {
				v.DependsOn = append(v.DependsOn, other.Name)
			}
		}
	}
	return nil
}

func (a *Analyzer) collectSequences(ctx context.Context, s *schema.Schema) error {
	query := a.d.Introspection().Sequences
	if query == "" {
		return nil
	}

	rows, err := a.db.Query(ctx, query, s.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var start, increment sql.NullInt64
		if err := rows.Scan(&name, &start, &increment); err != nil {
			return err
		}
		s.Sequences = append(s.Sequences, &schema.Sequence{
			Name:       name,
			StartValue: start.Int64,
			Increment:  increment.Int64,
		})
	}
	return rows.Err()
}

func (a *Analyzer) collectProcedures(ctx context.Context, s *schema.Schema) error {
	query := a.d.Introspection().Procedures
	if query == "" {
		return nil
	}

	rows, err := a.db.Query(ctx, query, s.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var definition sql.NullString
		if err := rows.Scan(&name, &definition); err != nil {
			return err
		}
		s.Procedures = append(s.Procedures, &schema.Procedure{
			Name:       name,
			Definition: definition.String,
		})
	}
	return rows.Err()
}

func (a *Analyzer) collectTriggers(ctx context.Context, s *schema.Schema) error {
	query := a.d.Introspection().Triggers
	if query == "" {
		return nil
	}

	rows, err := a.db.Query(ctx, query, s.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, table string
		var definition sql.NullString
		if err := rows.Scan(&name, &table, &definition); err != nil {
			return err
		}
		s.Triggers = append(s.Triggers, &schema.Trigger{
			Name:       name,
			Table:      table,
			Definition: definition.String,
		})
	}
	return rows.Err()
}
