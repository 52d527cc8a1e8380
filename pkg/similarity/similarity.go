// Package similarity implements a bit-vector + Bloom sketch cosine
// inbound-similarity scorer over per-host ingoing-host sets.
package similarity

import (
	"math"
	"sort"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/sketch"
)

// bloomBlocks is the number of Bloom-filter blocks in one fingerprint.
const bloomBlocks = 16
const fastRejectThreshold = 0.25

// InboundBitVec encodes one host's ingoing-host set: a sorted, deduplicated
// postings list, a 16-block Bloom fingerprint over the same ids, and a
// cached sqrt(len) used by every cosine computation that touches it.
type InboundBitVec struct {
	postings []uint64
	blocks   [bloomBlocks]*sketch.Bloom
	sqrtLen  float64
}

// Build constructs an InboundBitVec from a set of source host ids,
// excluding any caller has already filtered (nofollow and similar rel
// flags are excluded by the caller at build time, before this function
// ever sees them).
func Build(sourceHostIDs []ids.NodeID) *InboundBitVec {
	seen := make(map[uint64]struct{}, len(sourceHostIDs))
	for _, id := range sourceHostIDs {
		seen[uint64(id)] = struct{}{}
	}
	postings := make([]uint64, 0, len(seen))
	for id := range seen {
		postings = append(postings, id)
	}
	sort.Slice(postings, func(i, j int) bool { return postings[i] < postings[j] })

	var blocks [bloomBlocks]*sketch.Bloom
	perBlock := make([][]uint64, bloomBlocks)
	for _, id := range postings {
		b := id % bloomBlocks
		perBlock[b] = append(perBlock[b], id)
	}
	for i := range blocks {
		n := len(perBlock[i])
		if n == 0 {
			n = 1
		}
		blocks[i] = sketch.NewBloom(n, 0.01)
		for _, id := range perBlock[i] {
			blocks[i].Add(id)
		}
	}

	return &InboundBitVec{postings: postings, blocks: blocks, sqrtLen: math.Sqrt(float64(len(postings)))}
}

// Len reports the number of distinct source hosts.
func (v *InboundBitVec) Len() int { return len(v.postings) }

// bloomPopCount sums the popcount across every block, the fingerprint
// cardinality used by the fast-reject test.
func (v *InboundBitVec) bloomPopCount() int {
	total := 0
	for _, b := range v.blocks {
		total += b.PopCount()
	}
	return total
}

func (v *InboundBitVec) bloomIntersectionPopCount(other *InboundBitVec) int {
	total := 0
	for i := range v.blocks {
		total += v.blocks[i].IntersectionPopCount(other.blocks[i])
	}
	return total
}

func intersectSortedCount(a, b []uint64) int {
	i, j, count := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			count++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return count
}

// Sim computes cosine similarity over set membership between a and b, with
// a Bloom fast-reject short-circuit to 0.
func Sim(a, b *InboundBitVec) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}

	maxPop := a.bloomPopCount()
	if bp := b.bloomPopCount(); bp > maxPop {
		maxPop = bp
	}
	if maxPop > 0 {
		ratio := float64(a.bloomIntersectionPopCount(b)) / float64(maxPop)
		if ratio < fastRejectThreshold {
			return 0
		}
	}

	inter := intersectSortedCount(a.postings, b.postings)
	if inter == 0 {
		return 0
	}
	return float64(inter) / (a.sqrtLen * b.sqrtLen)
}

// Scorer caches per-node similarity scores against a fixed liked/disliked
// set.
type Scorer struct {
	liked, disliked []*InboundBitVec
	normalized      bool
	selfScore       float64
	cache           map[ids.NodeID]float64
	vecs            map[ids.NodeID]*InboundBitVec
}

// NewScorer returns a Scorer over liked/disliked host id→InboundBitVec
// resolvers. selfScore is used instead of actually computing Sim(n,n) per
// candidate, since a node's self-similarity is always 1.0 by construction.
func NewScorer(liked, disliked []*InboundBitVec, normalized bool, selfScore float64, vecs map[ids.NodeID]*InboundBitVec) *Scorer {
	return &Scorer{liked: liked, disliked: disliked, normalized: normalized, selfScore: selfScore, cache: map[ids.NodeID]float64{}, vecs: vecs}
}

// Score returns s(n) = max(0, |disliked| + Σ sim(L,n) − Σ sim(D,n)),
// optionally divided by |liked|, caching the result.
func (s *Scorer) Score(n ids.NodeID) float64 {
	if v, ok := s.cache[n]; ok {
		return v
	}

	nv, ok := s.vecs[n]
	total := float64(len(s.disliked))
	if ok {
		for _, l := range s.liked {
			if l == nv {
				total += s.selfScore
			} else {
				total += Sim(l, nv)
			}
		}
		for _, d := range s.disliked {
			if d == nv {
				total -= s.selfScore
			} else {
				total -= Sim(d, nv)
			}
		}
	}

	if s.normalized && len(s.liked) > 0 {
		total /= float64(len(s.liked))
	}
	if total < 0 {
		total = 0
	}
	s.cache[n] = total
	return total
}
