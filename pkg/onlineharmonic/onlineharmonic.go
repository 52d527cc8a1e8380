// Package onlineharmonic implements a proxy-node precomputed-distance
// scorer used to rank candidates against a user's liked/disliked node set
// at query time.
package onlineharmonic

import (
	"sort"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/webgraph"
)

const (
	// NumProxyNodes is the target proxy-node count.
	NumProxyNodes = 500
	// MaxDistProxy bounds bounded-Dijkstra exploration from each proxy.
	MaxDistProxy = 3
	// MaxNumDistanceNodes caps how many distances a single proxy records
	// in either direction.
	MaxNumDistanceNodes = 10_000
	// BestProxyNodesPerUserNode is how many closest proxies a user node
	// is paired with at query time.
	BestProxyNodesPerUserNode = 3
	// UserNodesLimit bounds how many liked nodes are tracked distinctly
	// before excess nodes are merged into existing ones.
	UserNodesLimit = 100
	// shiftConstant is the SHIFT additive term in the scoring formula.
	shiftConstant = 0.0
)

// ProxyNode is one precomputed-distance record: distances from the proxy
// to other nodes, and from other nodes to the proxy, both capped at
// MaxNumDistanceNodes entries and MaxDistProxy hops.
type ProxyNode struct {
	ID           ids.NodeID
	DistFromNode map[ids.NodeID]uint8
	DistToNode   map[ids.NodeID]uint8
}

// HostHarmonic resolves a node's precomputed harmonic centrality, used to
// select proxy candidates.
type HostHarmonic interface {
	Harmonic(node ids.NodeID) float64
}

// BuildProxyNodes selects the NumProxyNodes highest-harmonic nodes from
// candidates and precomputes bounded distances in both directions.
func BuildProxyNodes(shard *webgraph.Shard, candidates []ids.NodeID, harmonic HostHarmonic) []ProxyNode {
	sorted := make([]ids.NodeID, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return harmonic.Harmonic(sorted[i]) > harmonic.Harmonic(sorted[j]) })
	if len(sorted) > NumProxyNodes {
		sorted = sorted[:NumProxyNodes]
	}

	out := make([]ProxyNode, len(sorted))
	for i, id := range sorted {
		out[i] = ProxyNode{
			ID:           id,
			DistFromNode: boundedDijkstra(shard, id, edgestore.Forward),
			DistToNode:   boundedDijkstra(shard, id, edgestore.Reversed),
		}
	}
	return out
}

// boundedDijkstra runs an unweighted (every edge cost 1) bounded-BFS from
// src, capped at MaxDistProxy hops and MaxNumDistanceNodes entries.
func boundedDijkstra(shard *webgraph.Shard, src ids.NodeID, dir edgestore.Direction) map[ids.NodeID]uint8 {
	dist := map[ids.NodeID]uint8{src: 0}
	frontier := []ids.NodeID{src}
	for d := 1; d <= MaxDistProxy && len(frontier) > 0 && len(dist) < MaxNumDistanceNodes; d++ {
		var next []ids.NodeID
		for _, node := range frontier {
			for _, seg := range shard.Segments {
				edges, err := seg.Edges(node, dir, edgestore.EdgeLimit{})
				if err != nil {
					continue
				}
				for _, e := range edges {
					neighbor := e.To
					if dir == edgestore.Reversed {
						neighbor = e.From
					}
					if _, seen := dist[neighbor]; seen {
						continue
					}
					if len(dist) >= MaxNumDistanceNodes {
						break
					}
					dist[neighbor] = uint8(d)
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
	}
	return dist
}

// userNode is one tracked liked/disliked node with a merge-accumulated
// weight, used once more than UserNodesLimit liked nodes are supplied.
type userNode struct {
	id       ids.NodeID
	weight   float64
	disliked bool
}

// Scorer answers online-harmonic queries against a fixed set of proxies
// and user-supplied liked/disliked nodes.
type Scorer struct {
	proxies []ProxyNode
	liked   []userNode
	memo    *ristretto.Cache[ids.NodeID, float64]
}

// newMemo builds the small ristretto cache backing per-candidate score
// memoization. One Scorer typically scores at most a few thousand
// candidates per query, so NumCounters/MaxCost are sized accordingly
// rather than for a long-lived shared cache.
func newMemo() *ristretto.Cache[ids.NodeID, float64] {
	cache, err := ristretto.NewCache(&ristretto.Config[ids.NodeID, float64]{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		// Config above is static and always valid; NewCache only errors on
		// invalid configuration.
		panic(err)
	}
	return cache
}

// NewScorer builds a Scorer. Nodes supplied in likedIDs beyond
// UserNodesLimit are merged into the existing user node whose best proxy
// is closest, incrementing its weight.
func NewScorer(proxies []ProxyNode, likedIDs, dislikedIDs []ids.NodeID) *Scorer {
	s := &Scorer{proxies: proxies, memo: newMemo()}

	add := func(id ids.NodeID, disliked bool) {
		if len(s.liked) < UserNodesLimit {
			s.liked = append(s.liked, userNode{id: id, weight: 1.0, disliked: disliked})
			return
		}
		best := s.closestExistingUserNode(id)
		if best >= 0 {
			s.liked[best].weight++
		}
	}
	for _, id := range likedIDs {
		add(id, false)
	}
	for _, id := range dislikedIDs {
		add(id, true)
	}
	return s
}

// closestExistingUserNode finds the already-tracked user node whose best
// proxy is closest to id, returning its index or -1 if none can be
// compared (no proxy connects either node).
func (s *Scorer) closestExistingUserNode(id ids.NodeID) int {
	best, bestDist := -1, int(^uint(0)>>1)
	for i, u := range s.liked {
		d := s.distance(u.id, id)
		if d >= 0 && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// distance returns min over proxies p of dist(u,p)+dist(p,n), or -1 if no
// proxy connects both.
func (s *Scorer) distance(u, n ids.NodeID) int {
	best := -1
	for _, p := range s.proxies {
		du, ok1 := p.DistToNode[u]
		dn, ok2 := p.DistFromNode[n]
		if !ok1 || !ok2 {
			continue
		}
		total := int(du) + int(dn)
		if best < 0 || total < best {
			best = total
		}
	}
	return best
}

// Score computes s(n) for candidate n against the scorer's liked/disliked
// set, memoizing per candidate. Nodes supplied directly as liked
// short-circuit to 1.0; as disliked, to 0.0.
func (s *Scorer) Score(n ids.NodeID) float64 {
	if v, ok := s.memo.Get(n); ok {
		return v
	}
	for _, u := range s.liked {
		if u.id == n {
			score := 1.0
			if u.disliked {
				score = 0.0
			}
			s.memo.Set(n, score, 1)
			return score
		}
	}

	total := 0.0
	for _, u := range s.liked {
		d := s.distance(u.id, n)
		if d < 0 {
			continue
		}
		contribution := u.weight / float64(d+1)
		if u.disliked {
			total -= contribution
		} else {
			total += contribution
		}
	}

	numLiked := 0
	for _, u := range s.liked {
		if !u.disliked {
			numLiked++
		}
	}
	if numLiked > 0 {
		total /= float64(numLiked)
	}

	score := shiftConstant + total
	if score < 0 {
		score = 0
	}
	s.memo.Set(n, score, 1)
	return score
}
