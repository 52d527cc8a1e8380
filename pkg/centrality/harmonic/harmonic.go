// Package harmonic implements the exact, in-graph harmonic centrality
// engine: HyperLogLog-based neighborhood-function counting with a
// Bloom-filter "changed nodes" fast path, switching to exact changed-node
// tracking once the estimated count of changed nodes falls below sqrt(|V|).
package harmonic

import (
	"log"
	"math"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/sketch"
)

// Graph is the minimal view the harmonic engine needs: every node, and for
// a given node its in-neighbors (nodes with an edge pointing at it).
type Graph interface {
	Nodes() []ids.NodeID
	InNeighbors(node ids.NodeID) []ids.NodeID
}

// Snapshot is a point-in-time read of every node's centrality plus the
// round the engine converged at, exposed for CLI progress reporting.
type Snapshot struct {
	Scores     map[ids.NodeID]float64
	Rounds     int
}

// Engine runs the harmonic centrality computation to convergence over g.
type Engine struct {
	g        Graph
	counters map[ids.NodeID]*sketch.HyperLogLog
	centrality map[ids.NodeID]float64
	logger   *log.Logger
}

// New returns an Engine ready to Run over g.
func New(g Graph, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{g: g, logger: logger}
}

// Run executes the round loop to convergence (no counter changed in a
// round), dividing final scores by |V|-1 and collapsing non-finite values
// to 0.
func (e *Engine) Run() Snapshot {
	nodes := e.g.Nodes()
	n := len(nodes)

	e.counters = make(map[ids.NodeID]*sketch.HyperLogLog, n)
	e.centrality = make(map[ids.NodeID]float64, n)
	for _, node := range nodes {
		e.counters[node] = sketch.NewWithSelf(uint64(node))
	}

	changedExact := make(map[ids.NodeID]struct{}, n)
	for _, node := range nodes {
		changedExact[node] = struct{}{}
	}
	var changedSketch *sketch.Bloom
	useSketch := false
	sqrtV := math.Sqrt(float64(n))

	round := 0
	for {
		// Snapshot every candidate's counter before merging anything this
		// round: a node merged-into earlier in the loop must still be read
		// as a source with its start-of-round registers, not whatever a
		// same-round merge just wrote into it, or a 2-hop propagation
		// collapses into 1 round on cyclic graphs.
		roundStart := make(map[ids.NodeID]*sketch.HyperLogLog, n)
		for _, node := range nodes {
			if nodeIsCandidate(node, useSketch, changedExact, changedSketch) {
				roundStart[node] = e.counters[node].Clone()
			}
		}

		roundChanged := make(map[ids.NodeID]struct{})

		for _, node := range nodes {
			if !nodeIsCandidate(node, useSketch, changedExact, changedSketch) {
				continue
			}
			source := roundStart[node]
			for _, target := range outEdgesOf(e.g, node, nodes) {
				old := e.counters[target].Clone()
				if e.counters[target].Merge(source) {
					newCard := e.counters[target].Cardinality()
					oldCard := old.Cardinality()
					e.centrality[target] += (newCard - oldCard) / float64(round+1)
					roundChanged[target] = struct{}{}
				}
			}
		}

		e.logger.Printf("harmonic: round=%d changed=%d", round, len(roundChanged))

		if len(roundChanged) == 0 {
			break
		}

		bloom := sketch.NewBloom(len(roundChanged), 0.01)
		for node := range roundChanged {
			bloom.Add(uint64(node))
		}
		if float64(bloom.PopCount()) < sqrtV {
			useSketch = false
			changedExact = roundChanged
		} else {
			useSketch = true
			changedSketch = bloom
		}
		round++
	}

	out := make(map[ids.NodeID]float64, n)
	denom := float64(n - 1)
	for node, score := range e.centrality {
		v := score
		if denom > 0 {
			v /= denom
		} else {
			v = 0
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[node] = v
	}
	return Snapshot{Scores: out, Rounds: round}
}

func nodeIsCandidate(node ids.NodeID, useSketch bool, exact map[ids.NodeID]struct{}, sk *sketch.Bloom) bool {
	if useSketch {
		return sk.Contains(uint64(node))
	}
	_, ok := exact[node]
	return ok
}

// outEdgesOf returns every node whose in-neighbor set contains src — i.e.
// the forward edges of src — derived by scanning every candidate node's
// in-neighbor list. This is the naïve O(V) fallback used when the Graph
// implementation exposes only InNeighbors; webgraph-backed implementations
// should prefer a direct forward scan where available (see ShardGraph in
// adapter.go).
func outEdgesOf(g Graph, src ids.NodeID, nodes []ids.NodeID) []ids.NodeID {
	if fg, ok := g.(ForwardGraph); ok {
		return fg.OutNeighbors(src)
	}
	var out []ids.NodeID
	for _, n := range nodes {
		for _, in := range g.InNeighbors(n) {
			if in == src {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// ForwardGraph is an optional Graph extension a caller implements when
// forward adjacency is cheap to enumerate directly (as the edgestore-backed
// adapter's is), avoiding outEdgesOf's O(V) fallback scan.
type ForwardGraph interface {
	OutNeighbors(node ids.NodeID) []ids.NodeID
}
