package fanout

import (
	"context"
	"testing"

	"github.com/lanterngraph/core/pkg/cluster"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/ranking"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	result ShardResult
	err    error
}

func (s stubSearcher) SearchInitial(ctx context.Context, query ranking.Query) (ShardResult, error) {
	return s.result, s.err
}

func (s stubSearcher) Retrieve(ctx context.Context, pages []ids.NodeID) ([]ranking.Candidate, error) {
	return nil, nil
}

func registryWithShards(n int) *cluster.Registry {
	reg := cluster.NewRegistry()
	for i := 0; i < n; i++ {
		reg.Register(cluster.Member{
			ID:      "searcher-" + string(rune('a'+i)),
			Addr:    "127.0.0.1:0",
			Service: cluster.Service{Kind: cluster.ServiceSearcher, ShardID: uint64(i)},
		})
	}
	return reg
}

func TestBucketCollectorOrdersByScoreThenShardThenDoc(t *testing.T) {
	b := NewBucketCollector(10)
	b.Add(1, []ranking.RecallRankingWebpage{{Candidate: ranking.Candidate{PageID: 5}, Score: 1.0}})
	b.Add(0, []ranking.RecallRankingWebpage{{Candidate: ranking.Candidate{PageID: 2}, Score: 1.0}})
	b.Add(2, []ranking.RecallRankingWebpage{{Candidate: ranking.Candidate{PageID: 1}, Score: 2.0}})

	out := b.Finalize()
	require.Len(t, out, 3)
	require.Equal(t, ids.NodeID(1), out[0].Candidate.PageID) // highest score wins outright
	require.Equal(t, ids.NodeID(2), out[1].Candidate.PageID) // tied score, lower shard id wins
	require.Equal(t, ids.NodeID(5), out[2].Candidate.PageID)
}

func TestBucketCollectorTruncatesToCapacity(t *testing.T) {
	b := NewBucketCollector(2)
	for i := 0; i < 5; i++ {
		b.Add(uint64(i), []ranking.RecallRankingWebpage{{Candidate: ranking.Candidate{PageID: ids.NodeID(i)}, Score: float64(i)}})
	}
	require.Len(t, b.Finalize(), 2)
}

func TestResolveBangKnownAliasStripsBangAndRewrites(t *testing.T) {
	table := map[string]string{"w": "https://wikipedia.org/wiki/%s"}
	query, url, promote := resolveBang("!w golang", table)
	require.Equal(t, "golang", query)
	require.Equal(t, "https://wikipedia.org/wiki/%s", url)
	require.False(t, promote)
}

func TestResolveBangUnknownAliasPromotesFirstResult(t *testing.T) {
	query, url, promote := resolveBang("!nosuchbang golang", nil)
	require.Equal(t, "nosuchbang golang", query)
	require.Equal(t, "", url)
	require.True(t, promote)
}

func TestResolveBangPlainQueryIsUnaffected(t *testing.T) {
	query, url, promote := resolveBang("golang tutorial", nil)
	require.Equal(t, "golang tutorial", query)
	require.Empty(t, url)
	require.False(t, promote)
}

func TestQueryMergesAcrossShards(t *testing.T) {
	reg := registryWithShards(2)
	searchers := map[uint64]Searcher{
		0: stubSearcher{result: ShardResult{ShardID: 0, Websites: []ranking.RecallRankingWebpage{
			{Candidate: ranking.Candidate{PageID: 1}, Score: 0.5},
		}}},
		1: stubSearcher{result: ShardResult{ShardID: 1, Websites: []ranking.RecallRankingWebpage{
			{Candidate: ranking.Candidate{PageID: 2}, Score: 0.9},
		}}},
	}

	res, err := Query(context.Background(), reg, searchers, ranking.Query{}, "golang", nil, 0, 10, nil)
	require.NoError(t, err)
	require.Equal(t, 2, res.NumHits)
	require.Len(t, res.Webpages, 2)
	require.Equal(t, ids.NodeID(2), res.Webpages[0].Candidate.PageID)
	require.False(t, res.HasMoreResults)
}

func TestQueryApproximateOffsetsSkipsGlobalReRank(t *testing.T) {
	reg := registryWithShards(1)
	websites := make([]ranking.RecallRankingWebpage, 5)
	for i := range websites {
		websites[i] = ranking.RecallRankingWebpage{Candidate: ranking.Candidate{PageID: ids.NodeID(i)}, Score: float64(i)}
	}
	searchers := map[uint64]Searcher{
		0: stubSearcher{result: ShardResult{ShardID: 0, Websites: websites}},
	}

	res, err := Query(context.Background(), reg, searchers, ranking.Query{}, "golang", nil, NumPipelineRankingResults, 5, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, len(res.Webpages), 6)
}
