package sketch

import (
	"math"
	"testing"
)

func TestHyperLogLogCardinalityApprox(t *testing.T) {
	h := New()
	const n = 5000
	for i := uint64(0); i < n; i++ {
		h.Add(i)
	}
	est := h.Cardinality()
	// 64 registers gives ~13% standard error; allow generous slack.
	if math.Abs(est-n)/n > 0.35 {
		t.Fatalf("cardinality estimate too far off: got %.0f want ~%d", est, n)
	}
}

func TestHyperLogLogDuplicatesIgnored(t *testing.T) {
	h := New()
	h.Add(42)
	before := h.Cardinality()
	h.Add(42)
	h.Add(42)
	after := h.Cardinality()
	if before != after {
		t.Fatalf("duplicate adds changed cardinality: %.4f -> %.4f", before, after)
	}
}

func TestHyperLogLogMergeChangedFlag(t *testing.T) {
	a := New()
	a.Add(1)
	b := New()
	b.Add(1)

	if changed := a.Merge(b); changed {
		t.Fatalf("merging an identical counter should report no change")
	}

	b.Add(2)
	if changed := a.Merge(b); !changed {
		t.Fatalf("merging a counter with new members should report a change")
	}
}

func TestHyperLogLogCloneIndependent(t *testing.T) {
	a := New()
	a.Add(1)
	c := a.Clone()
	c.Add(2)
	if a.Equal(c) {
		t.Fatalf("clone should be independent of original")
	}
}
