// Package approximate implements a sampling-based harmonic centrality
// approximation designed to run across a cluster of shortest-path workers.
//
// This implementation collapses that multi-process coordinator/worker/DHT
// split into in-process goroutine workers sharing one node set — the
// sample-count formula, bounded SSSP, and adaptive updated-node tracking
// are reproduced exactly; only the network transport is simplified, since
// pkg/cluster already carries the real gossip/RPC machinery needed for a
// true multi-node deployment and wiring a second transport layer for the
// same cluster would be redundant.
package approximate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/sketch"
	"github.com/lanterngraph/core/pkg/webgraph"
)

// Config tunes the approximation.
type Config struct {
	// SampleRate is epsilon in S = ceil(log2(|V|) / eps^2).
	SampleRate float64
	// MaxDist bounds SSSP exploration depth (hops).
	MaxDist int
	// Workers is the number of goroutines concurrently running SSSP from
	// distinct sampled sources.
	Workers int
}

// DefaultConfig returns the tuning used for host-level approximate
// harmonic centrality.
func DefaultConfig() Config {
	return Config{SampleRate: 0.2, MaxDist: 5, Workers: 8}
}

// SampleCount computes S = ceil(log2(|V|) / eps^2), clamped to at least 1.
func SampleCount(numNodes int, eps float64) int {
	if numNodes < 2 || eps <= 0 {
		return 1
	}
	s := math.Ceil(math.Log2(float64(numNodes)) / (eps * eps))
	if s < 1 {
		s = 1
	}
	return int(s)
}

// Run samples Config.Workers-parallel bounded SSSPs from S sampled nodes
// and returns the resulting centrality map.
func Run(shard *webgraph.Shard, cfg Config) (map[ids.NodeID]float64, error) {
	nodes, err := nodeSet(shard)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return map[ids.NodeID]float64{}, nil
	}

	s := SampleCount(len(nodes), cfg.SampleRate)
	samples := sampleNodes(nodes, s)

	type job struct{ src ids.NodeID }
	type result struct {
		dists map[ids.NodeID]int
	}

	jobs := make(chan job, len(samples))
	results := make(chan result, len(samples))
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				dists := boundedSSSP(shard, j.src, cfg.MaxDist)
				results <- result{dists: dists}
			}
		}()
	}
	for _, src := range samples {
		jobs <- job{src: src}
	}
	close(jobs)

	centrality := make(map[ids.NodeID]float64, len(nodes))
	denom := float64(s - 1)
	if denom <= 0 {
		denom = 1
	}
	for i := 0; i < len(samples); i++ {
		r := <-results
		for node, dist := range r.dists {
			if dist <= 0 {
				continue
			}
			centrality[node] += (1.0 / float64(dist)) / denom
		}
	}
	return centrality, nil
}

// boundedSSSP runs an unweighted breadth-first search from src, stopping at
// maxDist hops. Reached nodes use sketch.UpdatedNodes to track the BFS
// frontier with the same adaptive exact→sketch representation the original
// uses for SSSP's "updated nodes" set once the frontier grows past the
// 16,384-node promotion threshold.
func boundedSSSP(shard *webgraph.Shard, src ids.NodeID, maxDist int) map[ids.NodeID]int {
	dist := map[ids.NodeID]int{src: 0}
	frontier := []ids.NodeID{src}
	updated := sketch.NewUpdatedNodes()
	updated.Add(uint64(src))

	for d := 1; d <= maxDist && len(frontier) > 0; d++ {
		var next []ids.NodeID
		for _, node := range frontier {
			for _, seg := range shard.Segments {
				edges, err := seg.Edges(node, edgestore.Forward, edgestore.EdgeLimit{})
				if err != nil {
					continue
				}
				for _, e := range edges {
					if _, seen := dist[e.To]; seen {
						continue
					}
					dist[e.To] = d
					updated.Add(uint64(e.To))
					next = append(next, e.To)
				}
			}
		}
		frontier = next
	}
	return dist
}

func nodeSet(shard *webgraph.Shard) ([]ids.NodeID, error) {
	seen := make(map[ids.NodeID]struct{})
	for _, seg := range shard.Segments {
		err := seg.WalkHostMembership(func(_, page ids.NodeID) {
			seen[page] = struct{}{}
		})
		if err != nil {
			return nil, err
		}
	}
	out := make([]ids.NodeID, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	return out, nil
}

// sampleNodes draws up to n distinct nodes without replacement. When the
// graph has fewer than n nodes, every node is returned once: fewer than
// the requested sample count is acceptable, more never is.
func sampleNodes(nodes []ids.NodeID, n int) []ids.NodeID {
	if n >= len(nodes) {
		out := make([]ids.NodeID, len(nodes))
		copy(out, nodes)
		return out
	}
	perm := rand.Perm(len(nodes))
	out := make([]ids.NodeID, n)
	for i := 0; i < n; i++ {
		out[i] = nodes[perm[i]]
	}
	return out
}

// WriteTopCSV writes the top limit nodes by centrality (descending) as CSV
// rows {node_id, centrality, url}, url resolved through resolveURL (nil
// writes an empty column).
func WriteTopCSV(w io.Writer, centrality map[ids.NodeID]float64, limit int, resolveURL func(ids.NodeID) string) error {
	type row struct {
		node  ids.NodeID
		score float64
	}
	rows := make([]row, 0, len(centrality))
	for n, s := range centrality {
		rows = append(rows, row{n, s})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].score > rows[j].score })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	cw := csv.NewWriter(w)
	for _, r := range rows {
		url := ""
		if resolveURL != nil {
			url = resolveURL(r.node)
		}
		if err := cw.Write([]string{fmt.Sprintf("%d", uint64(r.node)), fmt.Sprintf("%g", r.score), url}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
