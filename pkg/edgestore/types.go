// Package edgestore implements C1 of this module: a self-contained,
// on-disk directory holding a forward and a reversed adjacency index for one
// webgraph segment, each mapping a node id to a destination-record array and
// a block-compressed label sequence, plus a host→page membership index.
package edgestore

import (
	"github.com/lanterngraph/core/pkg/ids"
)

// RelFlags is a bitmask of relationship attributes carried by an Edge.
type RelFlags uint8

const (
	RelNofollow  RelFlags = 1 << iota // rel="nofollow"
	RelSponsored                      // rel="sponsored"
	RelUGC                            // rel="ugc"
)

// Has reports whether f includes flag.
func (f RelFlags) Has(flag RelFlags) bool { return f&flag != 0 }

// Insertion is one edge accepted by a Writer before Finalize sorts and
// packs it into a segment.
type Insertion struct {
	From       ids.Node
	To         ids.Node
	Label      string
	Rel        RelFlags
	SortKeySrc uint64 // typically a function of From's host centrality rank
}

// EdgeLimitKind distinguishes the three shapes of EdgeLimit.
type EdgeLimitKind int

const (
	Unlimited EdgeLimitKind = iota
	Limit
	LimitAndOffset
)

// EdgeLimit bounds how many destination records a read returns, optionally
// skipping a prefix first.
type EdgeLimit struct {
	Kind   EdgeLimitKind
	N      int
	Offset int
}

// LimitN returns an EdgeLimit capped at n records.
func LimitN(n int) EdgeLimit { return EdgeLimit{Kind: Limit, N: n} }

// LimitOffset returns an EdgeLimit capped at n records, skipping the first
// offset records first.
func LimitOffset(n, offset int) EdgeLimit {
	return EdgeLimit{Kind: LimitAndOffset, N: n, Offset: offset}
}

// window bounds a slice length to the limit, returning the [start,end) window
// the caller should materialize.
func (l EdgeLimit) window(total int) (start, end int) {
	switch l.Kind {
	case Limit:
		end = total
		if l.N < end {
			end = l.N
		}
		return 0, end
	case LimitAndOffset:
		start = l.Offset
		if start > total {
			start = total
		}
		end = start + l.N
		if end > total {
			end = total
		}
		return start, end
	default: // Unlimited
		return 0, total
	}
}

// EdgeWithoutLabel is the structural projection of an edge: source,
// destination, and the sort key used to order the destination array.
type EdgeWithoutLabel struct {
	From    ids.NodeID
	To      ids.NodeID
	SortKey uint64
}

// Edge is a fully hydrated edge, including its anchor label and rel flags.
type Edge struct {
	From    ids.NodeID
	To      ids.NodeID
	Label   string
	Rel     RelFlags
	SortKey uint64
}

// Direction selects which of a segment's two symmetric adjacency indexes a
// read targets.
type Direction int

const (
	Forward Direction = iota
	Reversed
)

// labelsPerBlock is the number of anchor-text labels packed into each
// zstd-compressed block.
const labelsPerBlock = 128
