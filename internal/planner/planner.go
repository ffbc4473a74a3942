// Package planner groups tables into level-ordered, size-bounded transfer
// batches and estimates their cost. Batches at the same level carry no
// dependency constraints between them and may run concurrently; batches
// must be consumed in ascending level order.
package planner

import (
	"sort"

	"github.com/schemaferry/schemaferry/internal/depgraph"
	"github.com/schemaferry/schemaferry/internal/schema"
)

// Cost model constants, measured against typical single-connection copies.
const (
	secondsPerRow   = 0.001
	secondsPerTable = 1.0
)

// Batch is a grouping artifact produced by one planning call; it does not
// own the tables it names.
type Batch struct {
	Level         int
	Tables        []string
	TotalRows     int64
	EstimatedTime float64
}

// CreateBatches partitions the schema's tables by dependency level and
// slices each level into chunks of at most maxBatchSize tables. Table
// names within a level are sorted so plans are deterministic.
func CreateBatches(s *schema.Schema, g *depgraph.Graph, maxBatchSize int) []Batch {
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}

	byLevel := make(map[int][]string)
	for table, level := range g.Levels {
		byLevel[level] = append(byLevel[level], table)
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	batches := make([]Batch, 0)
	for _, level := range levels {
		tables := byLevel[level]
		sort.Strings(tables)
		for start := 0; start < len(tables); start += maxBatchSize {
			end := start + maxBatchSize
			if end > len(tables) {
				end = len(tables)
			}
			chunk := tables[start:end]
			batches = append(batches, Batch{
				Level:         level,
				Tables:        chunk,
				TotalRows:     totalRows(s, chunk),
				EstimatedTime: EstimateTime(s, chunk),
			})
		}
	}
	return batches
}

// EstimateTime predicts the wall-clock seconds to transfer the given
// tables: a per-row copy cost plus a per-table setup cost.
func EstimateTime(s *schema.Schema, tables []string) float64 {
	return float64(totalRows(s, tables))*secondsPerRow + float64(len(tables))*secondsPerTable
}

func totalRows(s *schema.Schema, tables []string) int64 {
	var total int64
	for _, name := range tables {
		if t, ok := s.Tables[name]; ok {
			total += t.RowCount
		}
	}
	return total
}
