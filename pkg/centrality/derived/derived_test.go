package derived

import (
	"path/filepath"
	"testing"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
	"github.com/lanterngraph/core/pkg/webgraph"
	"github.com/stretchr/testify/require"
)

func TestComputeScoresPagesWithOutgoingEdges(t *testing.T) {
	u := ids.NewPage("https://a.example/u")
	v := ids.NewPage("https://b.example/v")
	noOut := ids.NewPage("https://c.example/noout")

	w := edgestore.NewWriter()
	w.Insert(edgestore.Insertion{From: u, To: v, SortKeySrc: 1})
	w.Insert(edgestore.Insertion{From: noOut, To: v, SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	shard := &webgraph.Shard{ID: 0, Segments: []*edgestore.Segment{seg}}

	hh := MapHostHarmonic{
		u.IntoHost().ID():     0.5,
		noOut.IntoHost().ID(): 0.9,
	}

	store, err := kvstore.Open(kvstore.Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, Compute(shard, hh, store))

	// v has outgoing edges? No — v has none, so v is not eligible.
	score, err := Lookup(store, v.ID())
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}
