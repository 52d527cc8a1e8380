package webgraph

import "strings"

// Filter is the closed set of filter variants composable over a Query's
// results. Each Filter exposes an Accept predicate evaluated at collection
// time, directly against an edge, rather than through a separate inverted
// posting index.
type Filter interface {
	Accept(e EdgeView) bool
}

// EdgeView is the subset of edgestore.Edge a Filter can inspect, widened
// with the host ids Execute already resolved so host-level filters don't
// need to re-derive them.
type EdgeView struct {
	FromID, ToID         uint64
	FromHostID, ToHostID uint64
	Label                string
	Rel                  uint8
}

// AndFilter accepts an edge only if every sub-filter accepts it.
type AndFilter struct{ Filters []Filter }

func (f AndFilter) Accept(e EdgeView) bool {
	for _, sub := range f.Filters {
		if !sub.Accept(e) {
			return false
		}
	}
	return true
}

// OrFilter accepts an edge if any sub-filter accepts it. An empty OrFilter
// accepts nothing.
type OrFilter struct{ Filters []Filter }

func (f OrFilter) Accept(e EdgeView) bool {
	for _, sub := range f.Filters {
		if sub.Accept(e) {
			return true
		}
	}
	return false
}

// NotFilter inverts its sub-filter.
type NotFilter struct{ Filter Filter }

func (f NotFilter) Accept(e EdgeView) bool { return !f.Filter.Accept(e) }

// TextField selects which text-bearing column TextFilter matches against.
type TextField int

const (
	TextFieldLabel TextField = iota
)

// TextFilter accepts an edge whose chosen text field contains Text
// (case-sensitive substring match; no tokenization or scoring).
type TextFilter struct {
	Text  string
	Field TextField
}

func (f TextFilter) Accept(e EdgeView) bool {
	switch f.Field {
	case TextFieldLabel:
		return strings.Contains(e.Label, f.Text)
	default:
		return false
	}
}
