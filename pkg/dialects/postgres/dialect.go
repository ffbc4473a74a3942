// Package postgres registers the PostgreSQL dialect.
package postgres

import "github.com/schemaferry/schemaferry/pkg/dialect"

var builtin = dialect.New("postgres").
	Identifiers(`"`, `"`, `""`).
	DefaultSchema("public").
	DefaultPort(5432).
	Placeholder(dialect.PlaceholderDollar).
	Paging(dialect.PagingLimitOffset).
	CreateSchemaFormat("CREATE SCHEMA IF NOT EXISTS %s").
	DropConstraints().
	TypeMapTo("mysql", map[string]string{
		"serial":                      "INT AUTO_INCREMENT",
		"bigserial":                   "BIGINT AUTO_INCREMENT",
		"boolean":                     "TINYINT(1)",
		"bytea":                       "LONGBLOB",
		"text":                        "LONGTEXT",
		"uuid":                        "CHAR(36)",
		"timestamp without time zone": "DATETIME",
		"timestamp with time zone":    "DATETIME",
		"double precision":            "DOUBLE",
	}).
	TypeMapTo("sqlite", map[string]string{
		"serial":                      "INTEGER",
		"bigserial":                   "INTEGER",
		"boolean":                     "INTEGER",
		"bytea":                       "BLOB",
		"uuid":                        "TEXT",
		"character varying":           "TEXT",
		"timestamp without time zone": "TEXT",
		"double precision":            "REAL",
	}).
	TypeMapTo("mssql", map[string]string{
		"serial":           "INT IDENTITY(1,1)",
		"bigserial":        "BIGINT IDENTITY(1,1)",
		"boolean":          "BIT",
		"bytea":            "VARBINARY(MAX)",
		"text":             "NVARCHAR(MAX)",
		"uuid":             "UNIQUEIDENTIFIER",
		"double precision": "FLOAT",
	}).
	TypeMapTo("oracle", map[string]string{
		"serial":    "NUMBER GENERATED BY DEFAULT AS IDENTITY",
		"bigserial": "NUMBER GENERATED BY DEFAULT AS IDENTITY",
		"boolean":   "NUMBER(1)",
		"bytea":     "BLOB",
		"text":      "CLOB",
		"integer":   "NUMBER(10)",
		"bigint":    "NUMBER(19)",
	}).
	Introspection(dialect.IntrospectionQueries{
		Tables: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`,
		Columns: `SELECT column_name, data_type, is_nullable, column_default,
			character_maximum_length, numeric_precision, numeric_scale
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`,
		PrimaryKeys: `SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = $1 AND tc.table_name = $2
			ORDER BY kcu.ordinal_position`,
		ForeignKeys: `SELECT kcu.column_name, ccu.table_schema, ccu.table_name,
			ccu.column_name, tc.constraint_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
			JOIN information_schema.constraint_column_usage ccu
			  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
			  AND tc.table_schema = $1 AND tc.table_name = $2`,
		Indexes: `SELECT indexname, tablename, indexdef FROM pg_indexes
			WHERE schemaname = $1 ORDER BY indexname`,
		Views: `SELECT table_name, view_definition FROM information_schema.views
			WHERE table_schema = $1 ORDER BY table_name`,
		Sequences: `SELECT sequence_name, start_value, increment
			FROM information_schema.sequences
			WHERE sequence_schema = $1 ORDER BY sequence_name`,
		Procedures: `SELECT p.proname, pg_get_functiondef(p.oid)
			FROM pg_proc p
			JOIN pg_namespace n ON p.pronamespace = n.oid
			WHERE n.nspname = $1 AND p.prokind IN ('f', 'p')
			ORDER BY p.proname`,
		Triggers: `SELECT t.tgname, c.relname, pg_get_triggerdef(t.oid)
			FROM pg_trigger t
			JOIN pg_class c ON t.tgrelid = c.oid
			JOIN pg_namespace n ON c.relnamespace = n.oid
			WHERE n.nspname = $1 AND NOT t.tgisinternal
			ORDER BY t.tgname`,
	}).
	Build()

func init() {
	dialect.Register(builtin)
}
