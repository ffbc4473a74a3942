package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteEscapes(t *testing.T) {
	d := New("quoted").Identifiers(`"`, `"`, `""`).Build()
	assert.Equal(t, `"users"`, d.Quote("users"))
	assert.Equal(t, `"we""ird"`, d.Quote(`we"ird`))
}

func TestQualifyTable(t *testing.T) {
	withSchemas := New("pg").Identifiers(`"`, `"`, `""`).DefaultSchema("public").Build()
	assert.Equal(t, `"public"."users"`, withSchemas.QualifyTable("public", "users"))
	assert.Equal(t, `"users"`, withSchemas.QualifyTable("", "users"))

	flat := New("lite").Identifiers(`"`, `"`, `""`).NoSchemas().Build()
	assert.Equal(t, `"users"`, flat.QualifyTable("main", "users"))
}

func TestFormatPlaceholder(t *testing.T) {
	tests := []struct {
		style PlaceholderStyle
		want  string
	}{
		{PlaceholderQuestion, "?"},
		{PlaceholderDollar, "$3"},
		{PlaceholderAtName, "@p3"},
		{PlaceholderColonName, ":3"},
	}
	for _, tt := range tests {
		d := New("x").Placeholder(tt.style).Build()
		assert.Equal(t, tt.want, d.FormatPlaceholder(3))
	}
}

func TestPageSQL(t *testing.T) {
	tests := []struct {
		name   string
		style  PagingStyle
		expect string
	}{
		{
			name:   "limit offset",
			style:  PagingLimitOffset,
			expect: `SELECT * FROM "t" LIMIT 100 OFFSET 200`,
		},
		{
			name:   "offset fetch",
			style:  PagingOffsetFetch,
			expect: `SELECT * FROM "t" ORDER BY (SELECT NULL) OFFSET 200 ROWS FETCH NEXT 100 ROWS ONLY`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("x").Identifiers(`"`, `"`, `""`).Paging(tt.style).Build()
			assert.Equal(t, tt.expect, d.PageSQL(`"t"`, 100, 200))
		})
	}

	rownum := New("ora").Paging(PagingRowNum).Build()
	sql := rownum.PageSQL("t", 100, 200)
	assert.Contains(t, sql, "ROWNUM")
	assert.Contains(t, sql, "300") // offset + limit upper bound
}

func TestTranslateTypePassthrough(t *testing.T) {
	d := New("src").
		TypeMapTo("dst", map[string]string{"serial": "INT AUTO_INCREMENT"}).
		Build()

	assert.Equal(t, "INT AUTO_INCREMENT", d.TranslateType("dst", "serial"))
	assert.Equal(t, "INT AUTO_INCREMENT", d.TranslateType("dst", "SERIAL"))
	// unknown types and targets pass through unchanged
	assert.Equal(t, "money", d.TranslateType("dst", "money"))
	assert.Equal(t, "serial", d.TranslateType("elsewhere", "serial"))
}

func TestSessionConstraintSQL(t *testing.T) {
	session := New("my").SessionConstraints("SET FK = 0", "SET FK = 1").Build()
	off, ok := session.SessionConstraintSQL(false)
	require.True(t, ok)
	assert.Equal(t, "SET FK = 0", off)
	on, _ := session.SessionConstraintSQL(true)
	assert.Equal(t, "SET FK = 1", on)
	assert.Equal(t, ToggleSessionFlag, session.ConstraintToggle())

	drop := New("pg").DropConstraints().Build()
	_, ok = drop.SessionConstraintSQL(false)
	assert.False(t, ok)
	assert.Equal(t, ToggleDropConstraints, drop.ConstraintToggle())
}

func TestCreateSchemaSQL(t *testing.T) {
	d := New("pg").Identifiers(`"`, `"`, `""`).
		CreateSchemaFormat("CREATE SCHEMA IF NOT EXISTS %s").Build()
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS shop", d.CreateSchemaSQL("shop"))

	flat := New("lite").NoSchemas().Build()
	assert.Empty(t, flat.CreateSchemaSQL("shop"))
}

func TestRegistry(t *testing.T) {
	Register(New("testdialect").DefaultSchema("dbo").Build())

	d, ok := Get("TestDialect")
	require.True(t, ok)
	assert.Equal(t, "testdialect", d.Name)
	assert.Equal(t, "dbo", DefaultSchemaForType("testdialect"))
	assert.Empty(t, DefaultSchemaForType("nope"))
	assert.Contains(t, List(), "testdialect")
}
