package planner

import (
	"testing"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/schema"
)

func flatSchema(tables map[string]int64) *schema.Schema {
	s := schema.New("public")
	for name, rows := range tables {
		s.Tables[name] = &schema.Table{Schema: "public", Name: name, RowCount: rows}
	}
	return s
}

func TestCreateBatchesChunksLevel(t *testing.T) {
	s := flatSchema(map[string]int64{"t1": 0, "t2": 0, "t3": 0, "t4": 0, "t5": 0})
	g := depgraph.Build(s, nil)

	batches := CreateBatches(s, g, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches for 5 tables at max size 2, got %d", len(batches))
	}
	sizes := []int{2, 2, 1}
	for i, b := range batches {
		if b.Level != 0 {
			t.Errorf("batch %d level = %d, want 0", i, b.Level)
		}
		if len(b.Tables) != sizes[i] {
			t.Errorf("batch %d size = %d, want %d", i, len(b.Tables), sizes[i])
		}
	}
}

func TestCreateBatchesLevelOrder(t *testing.T) {
	s := flatSchema(map[string]int64{"parent": 10, "child": 20})
	s.Tables["child"].ForeignKeys = []schema.ForeignKey{
		{Column: "parent_id", ReferencedTable: "parent", ReferencedColumn: "id"},
	}
	g := depgraph.Build(s, nil)

	batches := CreateBatches(s, g, 10)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].Level != 0 || batches[0].Tables[0] != "parent" {
		t.Errorf("first batch = %+v, want parent at level 0", batches[0])
	}
	if batches[1].Level != 1 || batches[1].Tables[0] != "child" {
		t.Errorf("second batch = %+v, want child at level 1", batches[1])
	}
	if batches[1].TotalRows != 20 {
		t.Errorf("child batch rows = %d, want 20", batches[1].TotalRows)
	}
}

func TestEstimateTime(t *testing.T) {
	s := flatSchema(map[string]int64{"users": 1000, "orders": 2000})

	got := EstimateTime(s, []string{"users", "orders"})
	want := 3000*0.001 + 2*1.0
	if got != want {
		t.Errorf("EstimateTime = %v, want %v", got, want)
	}

	if EstimateTime(s, nil) != 0 {
		t.Error("no tables must cost nothing")
	}
}

func TestCreateBatchesDeterministic(t *testing.T) {
	s := flatSchema(map[string]int64{"b": 0, "a": 0, "c": 0})
	g := depgraph.Build(s, nil)

	batches := CreateBatches(s, g, 10)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	want := []string{"a", "b", "c"}
	for i, name := range batches[0].Tables {
		if name != want[i] {
			t.Errorf("tables[%d] = %s, want %s", i, name, want[i])
		}
	}
}
