// Package mssql registers the SQL Server dialect.
//
// No adapter ships for SQL Server; the dialect exists so type translation
// and DDL generation toward (or from) SQL Server schemas keep working.
package mssql

import "github.com/schemaferry/schemaferry/pkg/dialect"

var builtin = dialect.New("mssql").
	Identifiers("[", "]", "]]").
	DefaultSchema("dbo").
	DefaultPort(1433).
	Placeholder(dialect.PlaceholderAtName).
	Paging(dialect.PagingOffsetFetch).
	CreateSchemaFormat("IF NOT EXISTS (SELECT * FROM sys.schemas WHERE name = '%[1]s') EXEC('CREATE SCHEMA %[1]s')").
	DropConstraints().
	TypeMapTo("postgres", map[string]string{
		"nvarchar":         "VARCHAR",
		"nvarchar(max)":    "TEXT",
		"varbinary(max)":   "BYTEA",
		"bit":              "BOOLEAN",
		"datetime2":        "TIMESTAMP",
		"uniqueidentifier": "UUID",
		"float":            "DOUBLE PRECISION",
	}).
	TypeMapTo("mysql", map[string]string{
		"nvarchar":         "VARCHAR",
		"nvarchar(max)":    "LONGTEXT",
		"varbinary(max)":   "LONGBLOB",
		"bit":              "TINYINT(1)",
		"datetime2":        "DATETIME",
		"uniqueidentifier": "CHAR(36)",
	}).
	Introspection(dialect.IntrospectionQueries{
		Tables: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = @p1 AND table_type = 'BASE TABLE' ORDER BY table_name`,
		Columns: `SELECT column_name, data_type, is_nullable, column_default,
			character_maximum_length, numeric_precision, numeric_scale
			FROM information_schema.columns
			WHERE table_schema = @p1 AND table_name = @p2 ORDER BY ordinal_position`,
		PrimaryKeys: `SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = @p1 AND tc.table_name = @p2
			ORDER BY kcu.ordinal_position`,
		ForeignKeys: `SELECT kcu.column_name, ccu.table_schema, ccu.table_name,
			ccu.column_name, tc.constraint_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			JOIN information_schema.constraint_column_usage ccu
			  ON ccu.constraint_name = tc.constraint_name
			WHERE tc.constraint_type = 'FOREIGN KEY'
			  AND tc.table_schema = @p1 AND tc.table_name = @p2`,
		Views: `SELECT table_name, view_definition FROM information_schema.views
			WHERE table_schema = @p1 ORDER BY table_name`,
		Procedures: `SELECT o.name, m.definition
			FROM sys.objects o
			JOIN sys.schemas s ON o.schema_id = s.schema_id
			JOIN sys.sql_modules m ON o.object_id = m.object_id
			WHERE s.name = @p1 AND o.type IN ('P', 'FN', 'IF', 'TF')
			ORDER BY o.name`,
		Triggers: `SELECT tr.name, t.name, m.definition
			FROM sys.triggers tr
			JOIN sys.tables t ON tr.parent_id = t.object_id
			JOIN sys.schemas s ON t.schema_id = s.schema_id
			JOIN sys.sql_modules m ON tr.object_id = m.object_id
			WHERE s.name = @p1
			ORDER BY tr.name`,
	}).
	Build()

func init() {
	dialect.Register(builtin)
}
