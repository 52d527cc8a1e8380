package harmonic

import (
	"sort"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/webgraph"
)

// ShardGraph adapts a webgraph.Shard to the Graph and ForwardGraph
// interfaces by reading adjacency directly off the segment files,
// avoiding the O(V) fallback scan in outEdgesOf.
type ShardGraph struct {
	shard *webgraph.Shard
	nodes []ids.NodeID
}

// NewShardGraph enumerates every distinct node id that appears as either
// endpoint of an edge in shard, for use as the harmonic engine's node set.
func NewShardGraph(shard *webgraph.Shard) (*ShardGraph, error) {
	seen := make(map[ids.NodeID]struct{})
	// Node discovery walks every recorded host's page membership, since
	// hosts/ is the only store indexed by full membership rather than by
	// a single node's adjacency.
	err := walkAllHosts(shard, func(_, page ids.NodeID) {
		seen[page] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	nodes := make([]ids.NodeID, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	// Go map iteration order is randomized per process; the engine's round
	// loop folds nodes in Nodes() order, so an unsorted result here would
	// make centrality non-deterministic across identical rebuilds of the
	// same committed snapshot.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return &ShardGraph{shard: shard, nodes: nodes}, nil
}

func walkAllHosts(shard *webgraph.Shard, fn func(host, page ids.NodeID)) error {
	for _, seg := range shard.Segments {
		if err := seg.WalkHostMembership(fn); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns every node id discovered at construction time.
func (g *ShardGraph) Nodes() []ids.NodeID { return g.nodes }

// InNeighbors returns node's in-neighbors by reading the reversed index.
func (g *ShardGraph) InNeighbors(node ids.NodeID) []ids.NodeID {
	var out []ids.NodeID
	for _, seg := range g.shard.Segments {
		edges, err := seg.Edges(node, edgestore.Reversed, edgestore.EdgeLimit{})
		if err != nil {
			continue
		}
		for _, e := range edges {
			out = append(out, e.From)
		}
	}
	return out
}

// OutNeighbors returns node's forward neighbors by reading the forward
// index, satisfying ForwardGraph.
func (g *ShardGraph) OutNeighbors(node ids.NodeID) []ids.NodeID {
	var out []ids.NodeID
	for _, seg := range g.shard.Segments {
		edges, err := seg.Edges(node, edgestore.Forward, edgestore.EdgeLimit{})
		if err != nil {
			continue
		}
		for _, e := range edges {
			out = append(out, e.To)
		}
	}
	return out
}
