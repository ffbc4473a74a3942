// Package dialect provides SQL dialect configuration for schema and data
// migration. It covers identifier quoting, schema qualification, result
// paging, cross-dialect type translation, constraint toggling, and the
// introspection queries each engine needs.
//
// This package contains the public contract; concrete dialect definitions are
// registered from pkg/dialects/*/ packages.
package dialect

import (
	"fmt"
	"strings"
)

// PlaceholderStyle describes how a dialect formats query parameters.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses "?" for every parameter (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses "$1", "$2", ... (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAtName uses "@p1", "@p2", ... (SQL Server).
	PlaceholderAtName
	// PlaceholderColonName uses ":1", ":2", ... (Oracle).
	PlaceholderColonName
)

// PagingStyle describes how a dialect windows through a table's rows.
type PagingStyle int

const (
	// PagingLimitOffset uses LIMIT n OFFSET m (PostgreSQL, MySQL, SQLite).
	PagingLimitOffset PagingStyle = iota
	// PagingOffsetFetch uses OFFSET m ROWS FETCH NEXT n ROWS ONLY (SQL Server).
	PagingOffsetFetch
	// PagingRowNum uses a ROWNUM-bounded subquery (Oracle).
	PagingRowNum
)

// ToggleStrategy describes how foreign-key enforcement is relaxed during a
// bulk load.
type ToggleStrategy int

const (
	// ToggleDropConstraints drops FK constraints before the load and
	// recreates them afterwards. Engines without a session-wide switch
	// (PostgreSQL, SQL Server, Oracle) use this.
	ToggleDropConstraints ToggleStrategy = iota
	// ToggleSessionFlag flips an engine-wide flag or pragma
	// (MySQL SET FOREIGN_KEY_CHECKS, SQLite PRAGMA foreign_keys).
	ToggleSessionFlag
)

// IntrospectionQueries holds the per-engine SQL used to enumerate schema
// objects. Parameter order is fixed: schema first, then table where both
// apply. An empty Tables query means the engine is introspected through
// pragmas instead (SQLite).
type IntrospectionQueries struct {
	Tables      string
	Columns     string
	PrimaryKeys string
	ForeignKeys string
	Indexes     string
	Views       string
	Sequences   string
	Procedures  string
	Triggers    string
}

// Dialect represents one supported SQL dialect.
type Dialect struct {
	Name          string
	DefaultSchema string
	DefaultPort   int

	// SupportsSchemas is false for engines with a single flat namespace
	// (SQLite); table references then omit the schema qualifier.
	SupportsSchemas bool

	quoteOpen   string
	quoteClose  string
	quoteEscape string

	placeholder  PlaceholderStyle
	paging       PagingStyle
	toggle       ToggleStrategy
	fkOffSQL     string
	fkOnSQL      string
	schemaFormat string // fmt template for idempotent CREATE SCHEMA; empty = no-op

	typeMaps      map[string]map[string]string // target dialect -> source type -> target type
	introspection IntrospectionQueries
}

// Quote wraps an identifier in the dialect's quoting characters, escaping any
// embedded closing quotes.
func (d *Dialect) Quote(ident string) string {
	if d.quoteEscape != "" {
		ident = strings.ReplaceAll(ident, d.quoteClose, d.quoteEscape)
	}
	return d.quoteOpen + ident + d.quoteClose
}

// QualifyTable returns the table reference to use in generated SQL. Engines
// without schema support get the bare table name.
func (d *Dialect) QualifyTable(schema, table string) string {
	if !d.SupportsSchemas || schema == "" {
		return d.Quote(table)
	}
	return d.Quote(schema) + "." + d.Quote(table)
}

// FormatPlaceholder returns the placeholder for the n-th parameter (1-based).
func (d *Dialect) FormatPlaceholder(n int) string {
	switch d.placeholder {
	case PlaceholderDollar:
		return fmt.Sprintf("$%d", n)
	case PlaceholderAtName:
		return fmt.Sprintf("@p%d", n)
	case PlaceholderColonName:
		return fmt.Sprintf(":%d", n)
	default:
		return "?"
	}
}

// PageSQL returns a SELECT that reads one fixed-size window of rows from the
// qualified table, in ascending offset order.
func (d *Dialect) PageSQL(qualifiedTable string, limit, offset int) string {
	switch d.paging {
	case PagingOffsetFetch:
		return fmt.Sprintf(
			"SELECT * FROM %s ORDER BY (SELECT NULL) OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
			qualifiedTable, offset, limit)
	case PagingRowNum:
		return fmt.Sprintf(
			"SELECT * FROM (SELECT t.*, ROWNUM rnum FROM %s t WHERE ROWNUM <= %d) WHERE rnum > %d",
			qualifiedTable, offset+limit, offset)
	default:
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", qualifiedTable, limit, offset)
	}
}

// CreateSchemaSQL returns an idempotent create-schema statement, or "" when
// the engine has no schema concept.
func (d *Dialect) CreateSchemaSQL(schema string) string {
	if d.schemaFormat == "" {
		return ""
	}
	return fmt.Sprintf(d.schemaFormat, schema)
}

// ConstraintToggle reports how FK enforcement is relaxed on this engine.
func (d *Dialect) ConstraintToggle() ToggleStrategy {
	return d.toggle
}

// SessionConstraintSQL returns the statement that flips FK enforcement for
// ToggleSessionFlag engines. ok is false for drop-and-recreate engines.
func (d *Dialect) SessionConstraintSQL(enabled bool) (sql string, ok bool) {
	if d.toggle != ToggleSessionFlag {
		return "", false
	}
	if enabled {
		return d.fkOnSQL, true
	}
	return d.fkOffSQL, true
}

// TranslateType maps a source column type to the named target dialect.
// Unknown types pass through unchanged.
func (d *Dialect) TranslateType(target, srcType string) string {
	m, ok := d.typeMaps[strings.ToLower(target)]
	if !ok {
		return srcType
	}
	if mapped, ok := m[strings.ToLower(srcType)]; ok {
		return mapped
	}
	return srcType
}

// Introspection returns the engine's catalog queries.
func (d *Dialect) Introspection() IntrospectionQueries {
	return d.introspection
}

// Paging returns the paging style.
func (d *Dialect) Paging() PagingStyle {
	return d.paging
}

// Builder assembles a Dialect. Concrete dialects chain the configuration
// methods and call Build in their package init.
type Builder struct {
	d *Dialect
}

// New creates a dialect builder with question-mark placeholders,
// LIMIT/OFFSET paging, double-quote identifiers, and schema support as
// defaults.
func New(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:            name,
		SupportsSchemas: true,
		quoteOpen:       `"`,
		quoteClose:      `"`,
		quoteEscape:     `""`,
		typeMaps:        make(map[string]map[string]string),
	}}
}

// Identifiers sets the quoting characters and escape sequence.
func (b *Builder) Identifiers(open, close, escape string) *Builder {
	b.d.quoteOpen = open
	b.d.quoteClose = close
	b.d.quoteEscape = escape
	return b
}

// DefaultSchema sets the schema assumed when none is given.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.d.DefaultSchema = schema
	return b
}

// DefaultPort sets the engine's conventional port.
func (b *Builder) DefaultPort(port int) *Builder {
	b.d.DefaultPort = port
	return b
}

// NoSchemas marks the dialect as having a single flat namespace.
func (b *Builder) NoSchemas() *Builder {
	b.d.SupportsSchemas = false
	return b
}

// Placeholder sets the parameter placeholder style.
func (b *Builder) Placeholder(style PlaceholderStyle) *Builder {
	b.d.placeholder = style
	return b
}

// Paging sets the row-windowing style.
func (b *Builder) Paging(style PagingStyle) *Builder {
	b.d.paging = style
	return b
}

// CreateSchemaFormat sets the fmt template for idempotent schema creation.
func (b *Builder) CreateSchemaFormat(format string) *Builder {
	b.d.schemaFormat = format
	return b
}

// DropConstraints selects the drop-and-recreate FK strategy.
func (b *Builder) DropConstraints() *Builder {
	b.d.toggle = ToggleDropConstraints
	return b
}

// SessionConstraints selects the session-flag FK strategy with the given
// off/on statements.
func (b *Builder) SessionConstraints(offSQL, onSQL string) *Builder {
	b.d.toggle = ToggleSessionFlag
	b.d.fkOffSQL = offSQL
	b.d.fkOnSQL = onSQL
	return b
}

// TypeMapTo adds a source-type translation table toward one target dialect.
// Keys are matched case-insensitively.
func (b *Builder) TypeMapTo(target string, types map[string]string) *Builder {
	m := make(map[string]string, len(types))
	for k, v := range types {
		m[strings.ToLower(k)] = v
	}
	b.d.typeMaps[strings.ToLower(target)] = m
	return b
}

// Introspection sets the catalog queries.
func (b *Builder) Introspection(q IntrospectionQueries) *Builder {
	b.d.introspection = q
	return b
}

// Build finalizes the dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}
