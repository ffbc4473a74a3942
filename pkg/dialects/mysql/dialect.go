// Package mysql registers the MySQL dialect.
package mysql

import "github.com/schemaferry/schemaferry/pkg/dialect"

var builtin = dialect.New("mysql").
	Identifiers("`", "`", "``").
	DefaultPort(3306).
	Placeholder(dialect.PlaceholderQuestion).
	Paging(dialect.PagingLimitOffset).
	CreateSchemaFormat("CREATE SCHEMA IF NOT EXISTS %s").
	SessionConstraints("SET FOREIGN_KEY_CHECKS = 0", "SET FOREIGN_KEY_CHECKS = 1").
	TypeMapTo("postgres", map[string]string{
		"tinyint":    "SMALLINT",
		"mediumint":  "INTEGER",
		"longtext":   "TEXT",
		"mediumtext": "TEXT",
		"longblob":   "BYTEA",
		"mediumblob": "BYTEA",
		"blob":       "BYTEA",
		"datetime":   "TIMESTAMP",
		"double":     "DOUBLE PRECISION",
		"enum":       "TEXT",
	}).
	TypeMapTo("sqlite", map[string]string{
		"tinyint":   "INTEGER",
		"mediumint": "INTEGER",
		"longtext":  "TEXT",
		"longblob":  "BLOB",
		"datetime":  "TEXT",
		"double":    "REAL",
	}).
	TypeMapTo("mssql", map[string]string{
		"tinyint":  "TINYINT",
		"longtext": "NVARCHAR(MAX)",
		"longblob": "VARBINARY(MAX)",
		"datetime": "DATETIME2",
		"double":   "FLOAT",
	}).
	Introspection(dialect.IntrospectionQueries{
		Tables: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name`,
		Columns: `SELECT column_name, data_type, is_nullable, column_default,
			character_maximum_length, numeric_precision, numeric_scale
			FROM information_schema.columns
			WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
		PrimaryKeys: `SELECT column_name FROM information_schema.key_column_usage
			WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
			ORDER BY ordinal_position`,
		ForeignKeys: `SELECT column_name, referenced_table_schema, referenced_table_name,
			referenced_column_name, constraint_name
			FROM information_schema.key_column_usage
			WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL`,
		Indexes: `SELECT DISTINCT index_name, table_name, '' FROM information_schema.statistics
			WHERE table_schema = ? ORDER BY index_name`,
		Views: `SELECT table_name, view_definition FROM information_schema.views
			WHERE table_schema = ? ORDER BY table_name`,
		Procedures: `SELECT routine_name, routine_definition
			FROM information_schema.routines
			WHERE routine_schema = ? ORDER BY routine_name`,
		Triggers: `SELECT trigger_name, event_object_table, action_statement
			FROM information_schema.triggers
			WHERE trigger_schema = ? ORDER BY trigger_name`,
	}).
	Build()

func init() {
	dialect.Register(builtin)
}
