package harmonic

import (
	"testing"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

// staticGraph is a fixed forward-adjacency map used to drive the engine
// directly against known graph shapes, independent of any on-disk
// representation.
type staticGraph struct {
	nodes []ids.NodeID
	out   map[ids.NodeID][]ids.NodeID
	in    map[ids.NodeID][]ids.NodeID
}

func newStaticGraph(edges [][2]ids.NodeID, nodes []ids.NodeID) *staticGraph {
	g := &staticGraph{nodes: nodes, out: map[ids.NodeID][]ids.NodeID{}, in: map[ids.NodeID][]ids.NodeID{}}
	for _, e := range edges {
		g.out[e[0]] = append(g.out[e[0]], e[1])
		g.in[e[1]] = append(g.in[e[1]], e[0])
	}
	return g
}

func (g *staticGraph) Nodes() []ids.NodeID                    { return g.nodes }
func (g *staticGraph) InNeighbors(n ids.NodeID) []ids.NodeID  { return g.in[n] }
func (g *staticGraph) OutNeighbors(n ids.NodeID) []ids.NodeID { return g.out[n] }

func TestTriangleHarmonicOrdering(t *testing.T) {
	a, b, c, d := ids.NodeID(1), ids.NodeID(2), ids.NodeID(3), ids.NodeID(4)
	g := newStaticGraph([][2]ids.NodeID{
		{a, b}, {b, c}, {a, c}, {c, a}, {d, c},
	}, []ids.NodeID{a, b, c, d})

	eng := New(g, nil)
	snap := eng.Run()

	require.Greater(t, snap.Scores[c], snap.Scores[a])
	require.Greater(t, snap.Scores[a], snap.Scores[b])
	require.Equal(t, 0.0, snap.Scores[d])
}

func TestIsolatedSinkHasZeroCentrality(t *testing.T) {
	a, b := ids.NodeID(1), ids.NodeID(2)
	g := newStaticGraph([][2]ids.NodeID{{a, b}}, []ids.NodeID{a, b})

	eng := New(g, nil)
	snap := eng.Run()
	require.Equal(t, 0.0, snap.Scores[a])
	require.Greater(t, snap.Scores[b], 0.0)
}

func TestDuplicateEdgesDoNotChangeCentrality(t *testing.T) {
	a, b := ids.NodeID(1), ids.NodeID(2)
	single := newStaticGraph([][2]ids.NodeID{{a, b}}, []ids.NodeID{a, b})
	dup := newStaticGraph([][2]ids.NodeID{{a, b}, {a, b}}, []ids.NodeID{a, b})

	s1 := New(single, nil).Run()
	s2 := New(dup, nil).Run()
	require.InDelta(t, s1.Scores[b], s2.Scores[b], 1e-9)
}
