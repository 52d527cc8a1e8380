package sketch

import (
	"math"

	"golang.org/x/crypto/blake2b"
)

// Bloom is a classic counting-free Bloom filter sized for a target false
// positive rate at construction time.
type Bloom struct {
	bits   []uint64 // bit array, 64 bits per word
	k      int      // number of hash functions
	numInserted int
}

// NewBloom returns a Bloom filter sized to hold approximately n elements at
// the given target false-positive rate (0,1).
func NewBloom(n int, fpRate float64) *Bloom {
	if n < 1 {
		n = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	m := optimalBits(n, fpRate)
	k := optimalHashes(n, m)
	if k < 1 {
		k = 1
	}
	words := (m + 63) / 64
	if words < 1 {
		words = 1
	}
	return &Bloom{bits: make([]uint64, words), k: k}
}

func optimalBits(n int, p float64) int {
	m := -float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)
	if m < 64 {
		m = 64
	}
	return int(math.Ceil(m))
}

func optimalHashes(n, m int) int {
	k := float64(m) / float64(n) * math.Ln2
	return int(math.Round(k))
}

func (b *Bloom) numBits() int { return len(b.bits) * 64 }

func (b *Bloom) positions(key uint64) []uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(key >> (8 * i))
	}
	sum := blake2b.Sum512(buf[:])
	h1 := le64(sum[0:8])
	h2 := le64(sum[8:16])

	out := make([]uint64, b.k)
	m := uint64(b.numBits())
	for i := 0; i < b.k; i++ {
		// Kirsch-Mitzenmacher double hashing.
		out[i] = (h1 + uint64(i)*h2) % m
	}
	return out
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// Add inserts key into the filter.
func (b *Bloom) Add(key uint64) {
	for _, pos := range b.positions(key) {
		b.bits[pos/64] |= 1 << (pos % 64)
	}
	b.numInserted++
}

// Contains reports whether key was (probably) inserted. False positives are
// possible; false negatives are not.
func (b *Bloom) Contains(key uint64) bool {
	for _, pos := range b.positions(key) {
		if b.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// PopCount returns the number of set bits, used as the |bloom(A)| proxy in
// the inbound-similarity fast-reject.
func (b *Bloom) PopCount() int {
	count := 0
	for _, w := range b.bits {
		count += popcount64(w)
	}
	return count
}

func popcount64(w uint64) int {
	c := 0
	for w != 0 {
		w &= w - 1
		c++
	}
	return c
}

// IntersectionPopCount estimates |bloom(A) ∩ bloom(B)| by counting bits set
// in both filters' underlying bit arrays. Only meaningful for two filters of
// identical size built with the same k.
func (b *Bloom) IntersectionPopCount(other *Bloom) int {
	n := len(b.bits)
	if len(other.bits) < n {
		n = len(other.bits)
	}
	count := 0
	for i := 0; i < n; i++ {
		count += popcount64(b.bits[i] & other.bits[i])
	}
	return count
}

// Clone returns an independent copy of b.
func (b *Bloom) Clone() *Bloom {
	c := &Bloom{bits: make([]uint64, len(b.bits)), k: b.k, numInserted: b.numInserted}
	copy(c.bits, b.bits)
	return c
}

// ===========================================================================
// Adaptive updated-node set.
// ===========================================================================

// exactToSketchThreshold is the point at which an Exact set is promoted to a
// Bloom sketch, sized for a 1% false-positive rate.
const exactToSketchThreshold = 16384

const sketchFalsePositiveRate = 0.01

// UpdatedNodes is the adaptive changed/updated-node representation used by
// the approximate (sampled SSSP) centrality's updated-node tracking; exact
// harmonic centrality tracks its changed nodes with a Bloom and a map
// directly instead. It starts as an exact set and promotes
// itself to a Bloom sketch once the exact representation would exceed
// exactToSketchThreshold entries.
type UpdatedNodes struct {
	exact  map[uint64]struct{} // nil once promoted
	sketch *Bloom              // nil until promoted
	count  int                 // only meaningful (exact) while sketch == nil
}

// NewUpdatedNodes returns an empty, exact-represented set.
func NewUpdatedNodes() *UpdatedNodes {
	return &UpdatedNodes{exact: make(map[uint64]struct{})}
}

// IsSketch reports whether the set has been promoted to a Bloom sketch.
func (u *UpdatedNodes) IsSketch() bool { return u.sketch != nil }

// Add inserts key, promoting to a sketch if the exact set would overflow
// the threshold.
func (u *UpdatedNodes) Add(key uint64) {
	if u.sketch != nil {
		u.sketch.Add(key)
		return
	}
	if _, ok := u.exact[key]; !ok {
		u.exact[key] = struct{}{}
		u.count++
	}
	if u.count > exactToSketchThreshold {
		u.promote()
	}
}

func (u *UpdatedNodes) promote() {
	b := NewBloom(u.count*2, sketchFalsePositiveRate)
	for k := range u.exact {
		b.Add(k)
	}
	u.sketch = b
	u.exact = nil
}

// Contains reports whether key is (probably, once sketched) a member.
func (u *UpdatedNodes) Contains(key uint64) bool {
	if u.sketch != nil {
		return u.sketch.Contains(key)
	}
	_, ok := u.exact[key]
	return ok
}

// Len returns the exact cardinality while unpromoted, or -1 once sketched
// (a Bloom filter cannot report an exact count).
func (u *UpdatedNodes) Len() int {
	if u.sketch != nil {
		return -1
	}
	return u.count
}

// Union merges other into u in place, promoting both operands from
// Exact to Sketch if their combined size would exceed the threshold.
func (u *UpdatedNodes) Union(other *UpdatedNodes) {
	if u.sketch == nil && other.sketch == nil {
		if u.count+other.count > exactToSketchThreshold {
			for k := range other.exact {
				u.Add(k)
			}
			return
		}
		for k := range other.exact {
			if _, ok := u.exact[k]; !ok {
				u.exact[k] = struct{}{}
				u.count++
			}
		}
		return
	}

	// At least one side is already a sketch: promote u first, then merge
	// bits (or re-add elements if other is still exact).
	if u.sketch == nil {
		u.promote()
	}
	if other.sketch != nil {
		for i := range u.sketch.bits {
			if i < len(other.sketch.bits) {
				u.sketch.bits[i] |= other.sketch.bits[i]
			}
		}
		return
	}
	for k := range other.exact {
		u.sketch.Add(k)
	}
}
