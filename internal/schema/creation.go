package schema

import (
	"sort"
	"strings"
)

// ObjectKind identifies a kind of schema object. The numeric order of the
// constants is the creation priority: sequences first, triggers last.
type ObjectKind int

const (
	KindSequence ObjectKind = iota
	KindTable
	KindView
	KindIndex
	KindProcedure
	KindTrigger
)

var kindNames = map[ObjectKind]string{
	KindSequence:  "sequence",
	KindTable:     "table",
	KindView:      "view",
	KindIndex:     "index",
	KindProcedure: "procedure",
	KindTrigger:   "trigger",
}

func (k ObjectKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ObjectRef names one object slated for creation.
type ObjectRef struct {
	Kind ObjectKind
	Name string
}

// systemIndexPrefixes mark indexes the engine creates implicitly alongside
// constraints; recreating them would fail or duplicate.
var systemIndexPrefixes = []string{"PK_", "FK_", "SYS_"}

// IsSystemIndex reports whether an index name denotes an engine-generated
// index.
func IsSystemIndex(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range systemIndexPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// ComputeCreationOrder returns every object in the schema in creation
// priority order: sequences, tables (dependency order), views (ordered so a
// view precedes views that reference it), non-system indexes, procedures,
// triggers.
func (s *Schema) ComputeCreationOrder() []ObjectRef {
	refs := make([]ObjectRef, 0)

	seqNames := make([]string, 0, len(s.Sequences))
	for _, seq := range s.Sequences {
		seqNames = append(seqNames, seq.Name)
	}
	sort.Strings(seqNames)
	for _, name := range seqNames {
		refs = append(refs, ObjectRef{Kind: KindSequence, Name: name})
	}

	tableOrder, _ := s.InsertionOrder()
	for _, name := range tableOrder {
		refs = append(refs, ObjectRef{Kind: KindTable, Name: name})
	}

	for _, name := range s.ViewOrder() {
		refs = append(refs, ObjectRef{Kind: KindView, Name: name})
	}

	for _, tableName := range tableOrder {
		t := s.Tables[tableName]
		idxNames := make([]string, 0, len(t.Indexes))
		for _, idx := range t.Indexes {
			if !IsSystemIndex(idx.Name) {
				idxNames = append(idxNames, idx.Name)
			}
		}
		sort.Strings(idxNames)
		for _, name := range idxNames {
			refs = append(refs, ObjectRef{Kind: KindIndex, Name: name})
		}
	}

	procNames := make([]string, 0, len(s.Procedures))
	for _, p := range s.Procedures {
		procNames = append(procNames, p.Name)
	}
	sort.Strings(procNames)
	for _, name := range procNames {
		refs = append(refs, ObjectRef{Kind: KindProcedure, Name: name})
	}

	trigNames := make([]string, 0, len(s.Triggers))
	for _, tr := range s.Triggers {
		trigNames = append(trigNames, tr.Name)
	}
	sort.Strings(trigNames)
	for _, name := range trigNames {
		refs = append(refs, ObjectRef{Kind: KindTrigger, Name: name})
	}

	return refs
}

// ViewOrder orders views so every view appears after the views it depends
// on. Views in a reference cycle are appended at the tail in sorted order.
func (s *Schema) ViewOrder() []string {
	byName := make(map[string]*View, len(s.Views))
	names := make([]string, 0, len(s.Views))
	for _, v := range s.Views {
		byName[v.Name] = v
		names = append(names, v.Name)
	}
	sort.Strings(names)

	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		for _, dep := range byName[name].DependsOn {
			if _, ok := byName[dep]; !ok {
				continue
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	order := make([]string, 0, len(names))
	frontier := make([]string, 0)
	for _, name := range names {
		if indegree[name] == 0 {
			frontier = append(frontier, name)
		}
	}
	for len(frontier) > 0 {
		next := make([]string, 0)
		for _, name := range frontier {
			order = append(order, name)
			for _, dep := range dependents[name] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}

	if len(order) < len(names) {
		placed := make(map[string]struct{}, len(order))
		for _, name := range order {
			placed[name] = struct{}{}
		}
		for _, name := range names {
			if _, ok := placed[name]; !ok {
				order = append(order, name)
			}
		}
	}
	return order
}
