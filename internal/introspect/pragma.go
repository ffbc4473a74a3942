package introspect

import (
	"context"
	"database/sql"
	"sort"

	"github.com/schemaferry/schemaferry/internal/schema"
)

// SQLite exposes its catalog through pragmas rather than information_schema
// views; these readers cover the pragma path the dialect signals with an
// empty Tables query.

func (a *Analyzer) pragmaTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, err
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

// pragmaTableInfo reads PRAGMA table_info, which carries both the column
// definitions and the primary-key membership.
func (a *Analyzer) pragmaTableInfo(ctx context.Context, table string) ([]schema.Column, []string, error) {
	rows, err := a.db.Query(ctx, "PRAGMA table_info("+a.d.Quote(table)+")")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns := make([]schema.Column, 0)
	type pkCol struct {
		name string
		pos  int
	}
	pks := make([]pkCol, 0)

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			def              sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &def, &pk); err != nil {
			return nil, nil, err
		}
		columns = append(columns, schema.Column{
			Name:     name,
			DataType: dataType,
			Nullable: notNull == 0,
			Default:  def.String,
		})
		if pk > 0 {
			pks = append(pks, pkCol{name: name, pos: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pks, func(i, j int) bool { return pks[i].pos < pks[j].pos })
	keys := make([]string, len(pks))
	for i, pk := range pks {
		keys[i] = pk.name
	}
	return columns, keys, nil
}

func (a *Analyzer) pragmaForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := a.db.Query(ctx, "PRAGMA foreign_key_list("+a.d.Quote(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fks := make([]schema.ForeignKey, 0)
	for rows.Next() {
		var (
			id, seq                      int
			refTable, from               string
			to                           sql.NullString
			onUpdate, onDelete, matching string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matching); err != nil {
			return nil, err
		}
		fks = append(fks, schema.ForeignKey{
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: to.String,
		})
	}
	return fks, rows.Err()
}
