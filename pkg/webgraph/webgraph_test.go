package webgraph

import (
	"path/filepath"
	"testing"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

func buildTestShard(t *testing.T) *Shard {
	t.Helper()
	a := ids.NewPage("https://a.example/")
	b := ids.NewPage("https://b.example/")
	c := ids.NewPage("https://c.example/")

	w := edgestore.NewWriter()
	w.Insert(edgestore.Insertion{From: a, To: b, Label: "a to b", SortKeySrc: 5})
	w.Insert(edgestore.Insertion{From: a, To: c, Label: "a to c", SortKeySrc: 9})
	w.Insert(edgestore.Insertion{From: b, To: c, Label: "b to c", SortKeySrc: 1})

	seg, err := w.Finalize(filepath.Join(t.TempDir(), "seg0"))
	require.NoError(t, err)
	return &Shard{ID: 0, Segments: []*edgestore.Segment{seg}}
}

func TestExecuteBacklinksQuery(t *testing.T) {
	shard := buildTestShard(t)
	defer shard.Close()

	c := ids.NewPage("https://c.example/")
	res, err := Execute(shard, BacklinksQuery{Node: c.ID()}, nil, TopDocsCollector{N: 10})
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	// Highest SortScore first.
	require.Equal(t, uint64(9), res.Edges[0].SortScore)
}

func TestExecuteLinksBetween(t *testing.T) {
	shard := buildTestShard(t)
	defer shard.Close()

	a := ids.NewPage("https://a.example/")
	c := ids.NewPage("https://c.example/")
	res, err := Execute(shard, LinksBetweenQuery{From: a.ID(), To: c.ID()}, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	require.Equal(t, "a to c", res.Edges[0].Label)
}

func TestExecuteTextFilterExcludes(t *testing.T) {
	shard := buildTestShard(t)
	defer shard.Close()

	c := ids.NewPage("https://c.example/")
	res, err := Execute(shard, BacklinksQuery{Node: c.ID()}, []Filter{TextFilter{Text: "a to"}}, TopDocsCollector{N: 10})
	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	require.Equal(t, "a to c", res.Edges[0].Label)
}

func TestShardOfStableAcrossCalls(t *testing.T) {
	node := ids.NewPage("https://stable.example/").ID()
	require.Equal(t, ShardOf(node, 4), ShardOf(node, 4))
}
