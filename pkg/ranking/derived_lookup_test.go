package ranking

import (
	"path/filepath"
	"testing"

	"github.com/lanterngraph/core/pkg/centrality/derived"
	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
	"github.com/lanterngraph/core/pkg/webgraph"
	"github.com/stretchr/testify/require"
)

func TestDerivedCentralityLookupFeedsRecallPageCentralitySignal(t *testing.T) {
	highPage := ids.NewPage("https://high.example/p")
	lowPage := ids.NewPage("https://low.example/p")
	linker := ids.NewPage("https://linker.example/l")

	w := edgestore.NewWriter()
	w.Insert(edgestore.Insertion{From: highPage, To: linker, SortKeySrc: 1})
	w.Insert(edgestore.Insertion{From: lowPage, To: linker, SortKeySrc: 1})
	w.Insert(edgestore.Insertion{From: linker, To: highPage, SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	defer seg.Close()

	shard := &webgraph.Shard{ID: 0, Segments: []*edgestore.Segment{seg}}

	hh := derived.MapHostHarmonic{
		highPage.IntoHost().ID(): 0.9,
		lowPage.IntoHost().ID():  0.1,
		linker.IntoHost().ID():   0.5,
	}

	store, err := kvstore.Open(kvstore.Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, derived.Compute(shard, hh, store))

	lookup := DerivedCentralityLookup{Store: store}

	candidates := []Candidate{
		{PageID: highPage.ID(), HostID: highPage.IntoHost().ID(), TextScore: 1.0, HostRank: 1},
		{PageID: lowPage.ID(), HostID: lowPage.IntoHost().ID(), TextScore: 1.0, HostRank: 1},
	}

	ranked := Recall(Query{}, candidates, nil, nil, nil, DefaultWeights(), lookup)
	require.Len(t, ranked, 2)

	require.Equal(t, highPage.ID(), ranked[0].Candidate.PageID)
	require.Greater(t, ranked[0].Signals[SignalPageCentrality].Score, ranked[1].Signals[SignalPageCentrality].Score)
}
