// Package fanout implements the distributed query path: scatter a query to
// every searcher shard and collect results into a fixed-size bucket with a
// deterministic tie-break. The winning documents are not fetched again from
// their owning shards: Searcher exposes Retrieve, but Query never calls it.
package fanout

import (
	"context"
	"sort"
	"time"

	"github.com/lanterngraph/core/pkg/cluster"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/ranking"
	"github.com/lanterngraph/core/pkg/telemetry"
)

// NumPipelineRankingResults bounds how many candidates the coordinator ever
// holds in memory across all shards for one query.
const NumPipelineRankingResults = 300

// ShardResult is what one searcher shard returns for the initial scatter.
type ShardResult struct {
	ShardID  uint64
	Websites []ranking.RecallRankingWebpage
}

// Searcher is the per-shard RPC surface the coordinator fans a query out
// to. An implementation typically wraps wire.WriteFrame/ReadFrame over a
// TCP connection to the member's Addr.
type Searcher interface {
	SearchInitial(ctx context.Context, query ranking.Query) (ShardResult, error)
	Retrieve(ctx context.Context, pages []ids.NodeID) ([]ranking.Candidate, error)
}

// bucketEntry is one candidate tracked by BucketCollector, carrying enough
// shard provenance to break ties deterministically across shards.
type bucketEntry struct {
	ShardID uint64
	DocID   ids.NodeID
	Webpage ranking.RecallRankingWebpage
}

// BucketCollector merges per-shard result streams into a single ranked
// list capped at a fixed size, ordering by SortScore descending and
// breaking ties by (shard id ascending, doc id ascending) so the merge is
// reproducible regardless of which shard answers first.
type BucketCollector struct {
	capacity int
	entries  []bucketEntry
}

// NewBucketCollector returns a collector capped at capacity entries.
func NewBucketCollector(capacity int) *BucketCollector {
	return &BucketCollector{capacity: capacity}
}

// Add folds one shard's results into the collector.
func (b *BucketCollector) Add(shardID uint64, webpages []ranking.RecallRankingWebpage) {
	for _, w := range webpages {
		b.entries = append(b.entries, bucketEntry{ShardID: shardID, DocID: w.Candidate.PageID, Webpage: w})
	}
}

// Finalize sorts the accumulated entries and truncates to capacity.
func (b *BucketCollector) Finalize() []ranking.RecallRankingWebpage {
	sort.Slice(b.entries, func(i, j int) bool {
		a, c := b.entries[i], b.entries[j]
		if a.Webpage.Score != c.Webpage.Score {
			return a.Webpage.Score > c.Webpage.Score
		}
		if a.ShardID != c.ShardID {
			return a.ShardID < c.ShardID
		}
		return a.DocID < c.DocID
	})
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
	out := make([]ranking.RecallRankingWebpage, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Webpage
	}
	return out
}

// WebsitesResult is the coordinator's final answer to a query.
type WebsitesResult struct {
	NumHits         int
	Webpages        []ranking.RecallRankingWebpage
	SearchDurationMS int64
	HasMoreResults  bool
}

// resolveBang checks for a leading "!" bang-operator query; if present but
// unresolvable against bangTable, it strips the bang and signals the
// caller to promote the first organic result's URL instead.
func resolveBang(rawQuery string, bangTable map[string]string) (query string, bangURL string, promoteFirst bool) {
	if len(rawQuery) == 0 || rawQuery[0] != '!' {
		return rawQuery, "", false
	}
	var key, rest string
	for i := 1; i < len(rawQuery); i++ {
		if rawQuery[i] == ' ' {
			key, rest = rawQuery[1:i], rawQuery[i+1:]
			break
		}
	}
	if key == "" {
		key, rest = rawQuery[1:], ""
	}
	if tmpl, ok := bangTable[key]; ok {
		return rest, tmpl, false
	}
	return rawQuery[1:], "", true
}

// Query runs the scatter/collect path against searchers, applying the
// approximate-offsets shortcut for deep pagination. It does not call
// Retrieve. A leading bang is stripped by resolveBang and the query is
// still scattered to every shard; an unknown bang adds 1 to the first
// merged result's score.
func Query(ctx context.Context, reg *cluster.Registry, searchers map[uint64]Searcher, query ranking.Query, rawQuery string, bangTable map[string]string, offset, numResults int, tel *telemetry.Telemetry) (WebsitesResult, error) {
	effectiveQuery, bangURL, promoteFirst := resolveBang(rawQuery, bangTable)
	query.Text = effectiveQuery
	_ = bangURL // a caller rendering bang redirects reads this back from resolveBang directly

	approximate := offset+numResults > NumPipelineRankingResults
	perShardLimit := numResults
	if approximate {
		perShardLimit = numResults + 1
	}

	members := reg.ByService(cluster.ServiceSearcher, 0, true)

	type scatterResult struct {
		shardID uint64
		result  ShardResult
		err     error
	}
	results := make(chan scatterResult, len(members))
	pending := 0
	for _, m := range members {
		s, ok := searchers[m.Service.ShardID]
		if !ok {
			continue
		}
		pending++
		go func(shardID uint64, s Searcher) {
			start := time.Now()
			r, err := s.SearchInitial(ctx, query)
			if tel != nil {
				tel.RecordShardLatency(ctx, shardID, float64(time.Since(start).Milliseconds()))
			}
			results <- scatterResult{shardID: shardID, result: r, err: err}
		}(m.Service.ShardID, s)
	}

	bucket := NewBucketCollector(NumPipelineRankingResults)
	numHits := 0
	for i := 0; i < pending; i++ {
		select {
		case r := <-results:
			if r.err != nil {
				continue
			}
			numHits += len(r.result.Websites)
			bucket.Add(r.shardID, r.result.Websites)
		case <-ctx.Done():
			return WebsitesResult{}, ctx.Err()
		}
	}

	merged := bucket.Finalize()
	if !approximate {
		start := offset
		if start > len(merged) {
			start = len(merged)
		}
		end := start + numResults
		if end > len(merged) {
			end = len(merged)
		}
		merged = merged[start:end]
	} else if len(merged) > perShardLimit {
		merged = merged[:perShardLimit]
	}

	if promoteFirst && len(merged) > 0 {
		merged[0].Score += 1 // promoted result surfaces first without a global re-sort
	}

	return WebsitesResult{
		NumHits:        numHits,
		Webpages:       merged,
		HasMoreResults: offset+len(merged) < numHits,
	}, nil
}
