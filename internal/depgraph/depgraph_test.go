package depgraph

import (
	"testing"

	"github.com/schemaferry/schemaferry/internal/schema"
)

func buildSchema(name string, fks map[string][]string) *schema.Schema {
	s := schema.New(name)
	for table, refs := range fks {
		t := &schema.Table{Schema: name, Name: table}
		for _, ref := range refs {
			t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
				Column:           ref + "_id",
				ReferencedTable:  ref,
				ReferencedColumn: "id",
			})
		}
		s.Tables[table] = t
	}
	return s
}

func TestBuildEmptySchema(t *testing.T) {
	g := Build(schema.New("public"), nil)
	if len(g.Nodes) != 0 || len(g.Levels) != 0 || g.HasCycles() {
		t.Errorf("empty schema must yield empty graph, got %+v", g)
	}

	g = Build(nil, nil)
	if len(g.Nodes) != 0 {
		t.Error("nil schema must yield empty graph")
	}
}

func TestBuildEdges(t *testing.T) {
	s := buildSchema("public", map[string][]string{
		"categories": nil,
		"products":   {"categories"},
	})
	g := Build(s, nil)

	deps := g.Dependencies("products")
	if len(deps) != 1 || deps[0] != "categories" {
		t.Errorf("products dependencies = %v, want [categories]", deps)
	}
	dependents := g.Dependents("categories")
	if len(dependents) != 1 || dependents[0] != "products" {
		t.Errorf("categories dependents = %v, want [products]", dependents)
	}
}

func TestBuildIgnoresOutOfScopeKeys(t *testing.T) {
	s := schema.New("public")
	s.Tables["orders"] = &schema.Table{
		Schema: "public",
		Name:   "orders",
		ForeignKeys: []schema.ForeignKey{
			{Column: "user_id", ReferencedSchema: "auth", ReferencedTable: "users"},
			{Column: "ghost_id", ReferencedTable: "missing"},
		},
	}
	g := Build(s, nil)
	if len(g.Nodes["orders"]) != 0 {
		t.Errorf("out-of-scope keys must not add edges, got %v", g.Nodes["orders"])
	}
	if g.Levels["orders"] != 0 {
		t.Errorf("orders level = %d, want 0", g.Levels["orders"])
	}
}

func TestLevelsAcyclic(t *testing.T) {
	s := buildSchema("public", map[string][]string{
		"categories":  nil,
		"orders":      nil,
		"products":    {"categories"},
		"order_items": {"orders", "products"},
	})
	g := Build(s, nil)

	want := map[string]int{
		"categories":  0,
		"orders":      0,
		"products":    1,
		"order_items": 2,
	}
	for table, lvl := range want {
		if g.Levels[table] != lvl {
			t.Errorf("level[%s] = %d, want %d", table, g.Levels[table], lvl)
		}
	}
	if g.MaxLevel() != 2 {
		t.Errorf("MaxLevel = %d, want 2", g.MaxLevel())
	}
	if g.HasCycles() {
		t.Error("acyclic graph must report no cycles")
	}
}

func TestCycleDetection(t *testing.T) {
	s := buildSchema("public", map[string][]string{
		"categories": nil,
		"a":          {"b"},
		"b":          {"a"},
	})
	g := Build(s, nil)

	if !g.HasCycles() {
		t.Fatal("a<->b cycle must be detected")
	}
	found := false
	for _, cycle := range g.Cycles {
		members := make(map[string]bool, len(cycle))
		for _, n := range cycle {
			members[n] = true
		}
		if members["a"] && members["b"] {
			found = true
		}
	}
	if !found {
		t.Errorf("cycle containing a and b not recorded, cycles = %v", g.Cycles)
	}

	// cyclic tables land above every acyclic level
	if g.Levels["a"] <= g.Levels["categories"] || g.Levels["b"] <= g.Levels["categories"] {
		t.Errorf("cycle members must be placed above acyclic tables, levels = %v", g.Levels)
	}
}

func TestEveryTableLeveled(t *testing.T) {
	s := buildSchema("public", map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"d": {"a"},
		"e": nil,
	})
	g := Build(s, nil)

	for table := range s.Tables {
		if _, ok := g.Levels[table]; !ok {
			t.Errorf("table %s received no level", table)
		}
	}
}

func TestRoots(t *testing.T) {
	s := buildSchema("public", map[string][]string{
		"categories": nil,
		"orders":     nil,
		"products":   {"categories"},
	})
	g := Build(s, nil)

	roots := g.Roots()
	if len(roots) != 2 || roots[0] != "categories" || roots[1] != "orders" {
		t.Errorf("Roots = %v, want [categories orders]", roots)
	}
}
