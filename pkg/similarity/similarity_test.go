package similarity

import (
	"testing"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

func idsRange(start, n int) []ids.NodeID {
	out := make([]ids.NodeID, n)
	for i := 0; i < n; i++ {
		out[i] = ids.NodeID(start + i)
	}
	return out
}

func TestSimSymmetric(t *testing.T) {
	a := Build(idsRange(0, 10))
	b := Build(idsRange(5, 10))
	require.InDelta(t, Sim(a, b), Sim(b, a), 1e-9)
}

func TestSimSelfGreaterOrEqual(t *testing.T) {
	a := Build(idsRange(0, 10))
	b := Build(idsRange(100, 10))
	require.GreaterOrEqual(t, Sim(a, a), Sim(a, b))
}

func TestSimZeroWhenEitherEmpty(t *testing.T) {
	a := Build(idsRange(0, 10))
	empty := Build(nil)
	require.Equal(t, 0.0, Sim(a, empty))
}

func TestSimNearZeroForDisjointSetsAgainstLargeUniverse(t *testing.T) {
	a := Build(idsRange(0, 10))
	b := Build(idsRange(100000, 10))
	require.Less(t, Sim(a, b), 0.01)
}

func TestScorerLikedAndDislikedNodes(t *testing.T) {
	likedNode := ids.NodeID(1)
	dislikedNode := ids.NodeID(2)
	otherNode := ids.NodeID(3)

	likedVec := Build(idsRange(0, 5))
	dislikedVec := Build(idsRange(50, 5))
	otherVec := Build(idsRange(0, 3))

	vecs := map[ids.NodeID]*InboundBitVec{
		likedNode:    likedVec,
		dislikedNode: dislikedVec,
		otherNode:    otherVec,
	}

	scorer := NewScorer([]*InboundBitVec{likedVec}, []*InboundBitVec{dislikedVec}, false, 1.0, vecs)

	require.Equal(t, 1.0+1.0, scorer.Score(likedNode)) // |disliked|=1 plus selfScore
	require.Equal(t, 0.0, scorer.Score(dislikedNode))  // 1 - selfScore(1) clamped to 0
}
