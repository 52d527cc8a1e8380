package webgraph

import "sort"

// Collector is the closed set of result-shaping strategies a query's
// matching edges are folded through.
type Collector interface{ isCollector() }

// TopDocsCollector keeps the top N edges by SortScore descending, with an
// optional offset. When EnableOffset is false the offset is expected to be
// applied by the caller at a later merge step rather than here.
type TopDocsCollector struct {
	N            int
	Offset       int
	EnableOffset bool
}

// GroupCollector groups edges by the opposite-host column and returns, for
// each neighbor host, the exact set of distinct neighbor page ids.
type GroupCollector struct{}

// GroupSketchCollector is GroupCollector but folds each group into a
// HyperLogLog sketch instead of materializing the exact set.
type GroupSketchCollector struct{}

func (TopDocsCollector) isCollector()     {}
func (GroupCollector) isCollector()       {}
func (GroupSketchCollector) isCollector() {}

// ScoredEdge pairs an edge projection with the collector's notion of rank.
type ScoredEdge struct {
	FromID, ToID uint64
	SortScore    uint64
	Label        string
	Rel          uint8
}

// collectTopDocs orders edges by SortScore descending, then applies
// offset/limit per c.
func collectTopDocs(edges []ScoredEdge, c TopDocsCollector) []ScoredEdge {
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].SortScore > edges[j].SortScore
	})
	start := 0
	if c.EnableOffset {
		start = c.Offset
	}
	if start > len(edges) {
		start = len(edges)
	}
	end := len(edges)
	if c.N > 0 && start+c.N < end {
		end = start + c.N
	}
	return edges[start:end]
}
