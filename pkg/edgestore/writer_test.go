package edgestore

import (
	"path/filepath"
	"testing"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

func TestWriterFinalizeForwardAndReversedEdges(t *testing.T) {
	a := ids.NewPage("https://a.example/")
	b := ids.NewPage("https://b.example/")
	c := ids.NewPage("https://c.example/")

	w := NewWriter()
	w.Insert(Insertion{From: a, To: b, Label: "to b", Rel: RelNofollow, SortKeySrc: 5})
	w.Insert(Insertion{From: a, To: c, Label: "to c", SortKeySrc: 9})
	w.Insert(Insertion{From: b, To: c, Label: "also to c", SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	fwd, err := seg.Edges(a.ID(), Forward, LimitN(10))
	require.NoError(t, err)
	require.Len(t, fwd, 2)
	// Highest sort key (to c, 9) must sort before (to b, 5).
	require.Equal(t, c.ID(), fwd[0].To)
	require.True(t, fwd[0].Rel == 0)
	require.Equal(t, b.ID(), fwd[1].To)
	require.True(t, fwd[1].Rel.Has(RelNofollow))

	rev, err := seg.Edges(c.ID(), Reversed, LimitN(10))
	require.NoError(t, err)
	require.Len(t, rev, 2)
	froms := map[ids.NodeID]bool{rev[0].From: true, rev[1].From: true}
	require.True(t, froms[a.ID()])
	require.True(t, froms[b.ID()])
}

func TestWriterFinalizeHostMembership(t *testing.T) {
	a := ids.NewPage("https://a.example/p1")
	b := ids.NewPage("https://b.example/p2")

	w := NewWriter()
	w.Insert(Insertion{From: a, To: b, Label: "link", SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	var pages []ids.NodeID
	err = seg.PagesByHost(a.IntoHost().ID(), func(p ids.NodeID) bool {
		pages = append(pages, p)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []ids.NodeID{a.ID()}, pages)

	has, err := seg.HostHasPage(b.IntoHost().ID(), b.ID())
	require.NoError(t, err)
	require.True(t, has)
}

func TestEdgesMissingNodeReturnsEmpty(t *testing.T) {
	w := NewWriter()
	w.Insert(Insertion{From: ids.NewPage("https://a.example/"), To: ids.NewPage("https://b.example/"), SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	edges, err := seg.Edges(ids.NewPage("https://nowhere.example/").ID(), Forward, LimitN(10))
	require.NoError(t, err)
	require.Nil(t, edges)
}

func TestEdgeLimitOffsetWindow(t *testing.T) {
	a := ids.NewPage("https://a.example/")
	w := NewWriter()
	for i := 0; i < 5; i++ {
		w.Insert(Insertion{From: a, To: ids.NewPage("https://b.example/" + string(rune('a'+i))), SortKeySrc: uint64(i)})
	}
	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	edges, err := seg.Edges(a.ID(), Forward, LimitOffset(2, 1))
	require.NoError(t, err)
	require.Len(t, edges, 2)
}
