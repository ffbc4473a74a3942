package introspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaferry/schemaferry/pkg/adapter"
	_ "github.com/schemaferry/schemaferry/pkg/dialects/postgres"
)

type mockAdapter struct {
	adapter.BaseSQLAdapter
	dialectName string
}

func (m *mockAdapter) Connect(ctx context.Context, cfg adapter.Config) error { return nil }
func (m *mockAdapter) DialectName() string                                   { return m.dialectName }

func newMockAdapter(t *testing.T) (*mockAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	a := &mockAdapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		dialectName:    "postgres",
	}
	return a, mock
}

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"column_name", "data_type", "is_nullable", "column_default",
		"character_maximum_length", "numeric_precision", "numeric_scale",
	})
}

func expectTableShape(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(columnRows().
			AddRow("id", "integer", "NO", nil, nil, 32, 0).
			AddRow("name", "character varying", "YES", nil, 50, nil, nil))
	mock.ExpectQuery(`PRIMARY KEY`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(`FOREIGN KEY`).
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "table_schema", "table_name", "column_name", "constraint_name",
		}))
}

func expectTableInfo(mock sqlmock.Sqlmock, table string, rowCount int64) {
	expectTableShape(mock)
	mock.ExpectQuery(fmt.Sprintf(`SELECT COUNT\(\*\) FROM "public"."%s"`, table)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(rowCount))
}

func TestAnalyzeSchema(t *testing.T) {
	db, mock := newMockAdapter(t)
	analyzer, err := New(db, nil)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("categories").AddRow("products"))
	expectTableInfo(mock, "categories", 5)
	expectTableInfo(mock, "products", 10)
	mock.ExpectQuery(`FROM pg_indexes`).
		WillReturnRows(sqlmock.NewRows([]string{"indexname", "tablename", "indexdef"}).
			AddRow("idx_products_name", "products",
				`CREATE INDEX idx_products_name ON public.products USING btree (name)`))
	mock.ExpectQuery(`FROM information_schema.views`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "view_definition"}).
			AddRow("active_products", "SELECT * FROM products WHERE active"))
	mock.ExpectQuery(`FROM information_schema.sequences`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_name", "start_value", "increment"}).
			AddRow("products_id_seq", 1, 1))
	mock.ExpectQuery(`FROM pg_proc`).
		WillReturnRows(sqlmock.NewRows([]string{"proname", "definition"}).
			AddRow("refresh_totals", "CREATE FUNCTION refresh_totals() ..."))
	mock.ExpectQuery(`FROM pg_trigger`).
		WillReturnRows(sqlmock.NewRows([]string{"tgname", "relname", "definition"}).
			AddRow("trg_products_audit", "products", "CREATE TRIGGER trg_products_audit ..."))

	s, err := analyzer.AnalyzeSchema(context.Background(), "public", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, s.Tables, 2)
	assert.Equal(t, int64(5), s.Tables["categories"].RowCount)
	assert.Equal(t, []string{"id"}, s.Tables["categories"].PrimaryKeys)
	assert.Equal(t, 50, s.Tables["categories"].Columns[1].Length)

	require.Len(t, s.Tables["products"].Indexes, 1)
	assert.Equal(t, []string{"name"}, s.Tables["products"].Indexes[0].Columns)

	require.Len(t, s.Views, 1)
	require.Len(t, s.Sequences, 1)
	assert.Equal(t, int64(1), s.Sequences[0].StartValue)

	require.Len(t, s.Procedures, 1)
	assert.Equal(t, "refresh_totals", s.Procedures[0].Name)
	require.Len(t, s.Triggers, 1)
	assert.Equal(t, "products", s.Triggers[0].Table)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyzeSchemaExcludesBrokenTable(t *testing.T) {
	db, mock := newMockAdapter(t)
	analyzer, err := New(db, nil)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("broken").AddRow("healthy"))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnError(fmt.Errorf("permission denied"))
	expectTableInfo(mock, "healthy", 7)

	opts := Options{RowCounts: true} // tables only
	s, err := analyzer.AnalyzeSchema(context.Background(), "public", opts)
	require.NoError(t, err)

	require.Len(t, s.Tables, 1)
	assert.Contains(t, s.Tables, "healthy")
}

func TestAnalyzeSchemaRowCountFailureDegradesToZero(t *testing.T) {
	db, mock := newMockAdapter(t)
	analyzer, err := New(db, nil)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("events"))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(columnRows().AddRow("id", "bigint", "NO", nil, nil, 64, 0))
	mock.ExpectQuery(`PRIMARY KEY`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectQuery(`FOREIGN KEY`).
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "table_schema", "table_name", "column_name", "constraint_name",
		}))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnError(fmt.Errorf("lock timeout"))

	s, err := analyzer.AnalyzeSchema(context.Background(), "public", Options{RowCounts: true})
	require.NoError(t, err)

	require.Contains(t, s.Tables, "events")
	assert.Equal(t, int64(0), s.Tables["events"].RowCount)
}

func TestRowCountsDisabledSkipsCountQuery(t *testing.T) {
	db, mock := newMockAdapter(t)
	analyzer, err := New(db, nil)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("events"))
	expectTableShape(mock)

	s, err := analyzer.AnalyzeSchema(context.Background(), "public", Options{})
	require.NoError(t, err)

	require.Contains(t, s.Tables, "events")
	assert.Equal(t, int64(0), s.Tables["events"].RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnNullableFlagVariants(t *testing.T) {
	db, mock := newMockAdapter(t)
	analyzer, err := New(db, nil)
	require.NoError(t, err)

	// engines report nullability as YES/NO or as Oracle's Y/N
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(columnRows().
			AddRow("a", "integer", "YES", nil, nil, nil, nil).
			AddRow("b", "integer", "Y", nil, nil, nil, nil).
			AddRow("c", "integer", "NO", nil, nil, nil, nil).
			AddRow("d", "integer", "N", nil, nil, nil, nil))
	mock.ExpectQuery(`PRIMARY KEY`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectQuery(`FOREIGN KEY`).
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "table_schema", "table_name", "column_name", "constraint_name",
		}))

	table, err := analyzer.TableInfo(context.Background(), "public", "t", false)
	require.NoError(t, err)

	want := []bool{true, true, false, false}
	require.Len(t, table.Columns, 4)
	for i, col := range table.Columns {
		assert.Equal(t, want[i], col.Nullable, col.Name)
	}
}

func TestIndexColumns(t *testing.T) {
	tests := []struct {
		definition string
		want       []string
	}{
		{`CREATE INDEX i ON t USING btree (a, b)`, []string{"a", "b"}},
		{`CREATE UNIQUE INDEX i ON t ("Name")`, []string{"Name"}},
		{`garbage`, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, indexColumns(tt.definition), tt.definition)
	}
}
