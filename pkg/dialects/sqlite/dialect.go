// Package sqlite registers the SQLite dialect.
//
// SQLite has no schema namespaces and exposes its catalog through pragmas;
// the introspection Tables query is left empty so the analyzer takes the
// pragma path.
package sqlite

import "github.com/schemaferry/schemaferry/pkg/dialect"

var builtin = dialect.New("sqlite").
	Identifiers(`"`, `"`, `""`).
	NoSchemas().
	Placeholder(dialect.PlaceholderQuestion).
	Paging(dialect.PagingLimitOffset).
	SessionConstraints("PRAGMA foreign_keys = OFF", "PRAGMA foreign_keys = ON").
	TypeMapTo("postgres", map[string]string{
		"integer": "INTEGER",
		"real":    "DOUBLE PRECISION",
		"blob":    "BYTEA",
	}).
	TypeMapTo("mysql", map[string]string{
		"text": "LONGTEXT",
		"real": "DOUBLE",
		"blob": "LONGBLOB",
	}).
	Build()

func init() {
	dialect.Register(builtin)
}
