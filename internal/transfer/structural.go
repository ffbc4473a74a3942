package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemaferry/schemaferry/internal/schema"
	"github.com/schemaferry/schemaferry/pkg/dialect"
)

// createTargetSchema issues the dialect's idempotent schema creation
// statement. Engines without schema support make this a no-op.
func (e *Engine) createTargetSchema(ctx context.Context, targetSchema string) error {
	stmt := e.dstDialect.CreateSchemaSQL(targetSchema)
	if stmt == "" {
		return nil
	}
	return e.target.Exec(ctx, stmt)
}

// createTables creates every table in dependency order. A failure aborts
// the structural phase unless continue_on_error is set, in which case the
// table is skipped and recorded.
func (e *Engine) createTables(ctx context.Context, s *schema.Schema, order []string, targetSchema string) (int, error) {
	created := 0
	for _, name := range order {
		if e.isStopped() {
			return created, nil
		}
		t, ok := s.Tables[name]
		if !ok {
			continue
		}

		e.update(func(p *Progress) {
			p.CurrentTable = name
			p.CurrentOperation = "creating table " + name
		})

		qualified := e.dstDialect.QualifyTable(targetSchema, name)
		if e.opts.DropExistingTables {
			if err := e.target.Exec(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
				e.recordWarning(fmt.Sprintf("failed to drop existing table %s: %v", name, err))
			}
		}

		ddl := e.buildCreateTable(s, t, targetSchema)
		if err := e.target.Exec(ctx, ddl); err != nil {
			msg := fmt.Sprintf("failed to create table %s: %v", name, err)
			if !e.opts.ContinueOnError {
				return created, fmt.Errorf("failed to create table %s: %w", name, err)
			}
			e.recordError(msg)
			continue
		}
		created++
	}
	return created, nil
}

// buildCreateTable renders the CREATE TABLE statement for one table in the
// target dialect, translating column types through the source dialect's
// type map. Foreign key clauses are omitted when the referenced table lies
// outside the migrated set or when constraints are disabled or ignored.
func (e *Engine) buildCreateTable(s *schema.Schema, t *schema.Table, targetSchema string) string {
	parts := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))

	for _, col := range t.Columns {
		parts = append(parts, e.columnDef(col))
	}

	if len(t.PrimaryKeys) > 0 {
		quoted := make([]string, len(t.PrimaryKeys))
		for i, pk := range t.PrimaryKeys {
			quoted[i] = e.dstDialect.Quote(pk)
		}
		parts = append(parts, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}

	if !e.opts.IgnoreForeignKeys && !e.opts.DisableConstraints {
		for _, fk := range t.ForeignKeys {
			if fk.ReferencedSchema != "" && fk.ReferencedSchema != s.Name {
				continue
			}
			if _, ok := s.Tables[fk.ReferencedTable]; !ok {
				continue
			}
			clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				e.dstDialect.Quote(fk.Column),
				e.dstDialect.QualifyTable(targetSchema, fk.ReferencedTable),
				e.dstDialect.Quote(fk.ReferencedColumn))
			if fk.Name != "" {
				clause = "CONSTRAINT " + e.dstDialect.Quote(fk.Name) + " " + clause
			}
			parts = append(parts, clause)
		}
	}

	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n)",
		e.dstDialect.QualifyTable(targetSchema, t.Name),
		strings.Join(parts, ",\n    "))
}

// columnDef renders one column definition in the target dialect.
func (e *Engine) columnDef(col schema.Column) string {
	typ := e.srcDialect.TranslateType(e.dstDialect.Name, col.DataType)
	if !strings.Contains(typ, "(") {
		switch {
		case col.Length > 0:
			typ = fmt.Sprintf("%s(%d)", typ, col.Length)
		case col.Precision > 0 && col.Scale > 0:
			typ = fmt.Sprintf("%s(%d,%d)", typ, col.Precision, col.Scale)
		case col.Precision > 0:
			typ = fmt.Sprintf("%s(%d)", typ, col.Precision)
		}
	}

	def := e.dstDialect.Quote(col.Name) + " " + typ
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != "" {
		def += " DEFAULT " + col.Default
	}
	return def
}

// toggleConstraints relaxes or restores foreign key enforcement on the
// target per its dialect's strategy. Both directions are best effort:
// restoring a dropped constraint can legitimately fail when copied data
// violates it, so failures are recorded as warnings, never as errors.
func (e *Engine) toggleConstraints(ctx context.Context, s *schema.Schema, targetSchema string, enabled bool) {
	switch e.dstDialect.ConstraintToggle() {
	case dialect.ToggleSessionFlag:
		stmt, ok := e.dstDialect.SessionConstraintSQL(enabled)
		if !ok {
			return
		}
		if err := e.target.Exec(ctx, stmt); err != nil {
			e.recordWarning(fmt.Sprintf("failed to toggle constraint enforcement: %v", err))
		}

	case dialect.ToggleDropConstraints:
		for _, name := range s.TableNames() {
			t := s.Tables[name]
			qualified := e.dstDialect.QualifyTable(targetSchema, name)
			for _, fk := range t.ForeignKeys {
				if fk.Name == "" {
					continue
				}
				var stmt string
				if enabled {
					stmt = fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
						qualified,
						e.dstDialect.Quote(fk.Name),
						e.dstDialect.Quote(fk.Column),
						e.dstDialect.QualifyTable(targetSchema, fk.ReferencedTable),
						e.dstDialect.Quote(fk.ReferencedColumn))
				} else {
					stmt = fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s",
						qualified, e.dstDialect.Quote(fk.Name))
				}
				if err := e.target.Exec(ctx, stmt); err != nil {
					e.recordWarning(fmt.Sprintf("constraint %s on %s: %v", fk.Name, name, err))
				}
			}
		}
	}
}
