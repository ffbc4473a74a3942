// Package oracle registers the Oracle dialect.
//
// No adapter ships for Oracle; the dialect exists so type translation and
// paging SQL toward (or from) Oracle schemas keep working.
package oracle

import "github.com/schemaferry/schemaferry/pkg/dialect"

var builtin = dialect.New("oracle").
	Identifiers(`"`, `"`, `""`).
	DefaultPort(1521).
	Placeholder(dialect.PlaceholderColonName).
	Paging(dialect.PagingRowNum).
	DropConstraints().
	TypeMapTo("postgres", map[string]string{
		"number":    "NUMERIC",
		"varchar2":  "VARCHAR",
		"nvarchar2": "VARCHAR",
		"clob":      "TEXT",
		"blob":      "BYTEA",
		"date":      "TIMESTAMP",
		"raw":       "BYTEA",
	}).
	TypeMapTo("mysql", map[string]string{
		"number":   "DECIMAL",
		"varchar2": "VARCHAR",
		"clob":     "LONGTEXT",
		"blob":     "LONGBLOB",
		"date":     "DATETIME",
	}).
	Introspection(dialect.IntrospectionQueries{
		Tables: `SELECT table_name FROM all_tables WHERE owner = :1 ORDER BY table_name`,
		Columns: `SELECT column_name, data_type, nullable, data_default,
			data_length, data_precision, data_scale
			FROM all_tab_columns WHERE owner = :1 AND table_name = :2
			ORDER BY column_id`,
		PrimaryKeys: `SELECT cc.column_name
			FROM all_constraints c JOIN all_cons_columns cc
			  ON c.constraint_name = cc.constraint_name AND c.owner = cc.owner
			WHERE c.constraint_type = 'P' AND c.owner = :1 AND c.table_name = :2
			ORDER BY cc.position`,
		ForeignKeys: `SELECT cc.column_name, rc.owner, rc.table_name,
			rcc.column_name, c.constraint_name
			FROM all_constraints c
			JOIN all_cons_columns cc
			  ON c.constraint_name = cc.constraint_name AND c.owner = cc.owner
			JOIN all_constraints rc
			  ON c.r_constraint_name = rc.constraint_name AND c.r_owner = rc.owner
			JOIN all_cons_columns rcc
			  ON rc.constraint_name = rcc.constraint_name AND rc.owner = rcc.owner
			WHERE c.constraint_type = 'R' AND c.owner = :1 AND c.table_name = :2`,
		Sequences: `SELECT sequence_name, min_value, increment_by
			FROM all_sequences WHERE sequence_owner = :1 ORDER BY sequence_name`,
		Procedures: `SELECT object_name,
			DBMS_METADATA.GET_DDL(object_type, object_name, owner)
			FROM all_objects
			WHERE owner = :1 AND object_type IN ('PROCEDURE', 'FUNCTION')
			ORDER BY object_name`,
		Triggers: `SELECT trigger_name, table_name, description || trigger_body
			FROM all_triggers WHERE owner = :1 ORDER BY trigger_name`,
	}).
	Build()

func init() {
	dialect.Register(builtin)
}
