package ranking

import (
	"sort"

	"github.com/lanterngraph/core/pkg/ids"
)

// Candidate is one document surfaced by a shard's recall stage before
// fusion: enough raw material (text-match score, host/page ids, URL,
// timestamp) for the aggregator to derive every Signal.
type Candidate struct {
	PageID       ids.NodeID
	HostID       ids.NodeID
	URL          string
	TextScore    float64 // BM25 or equivalent, already computed upstream
	HostRank     float64 // dense rank order from harmonic centrality, lower is better
	AgeDays      float64
	IsHTTPS      bool
	PathSegments int
}

// InboundScorer resolves C4/C5's candidate score for a page: a bit-vector
// cosine scorer (C4) or a proxy-distance scorer (C5), both expose the same
// shape from the pipeline's point of view.
type InboundScorer interface {
	Score(n ids.NodeID) float64
}

// CentralityLookup resolves a precomputed centrality value for a node,
// satisfied by derived.Lookup-backed adapters or an in-memory map.
type CentralityLookup interface {
	Centrality(n ids.NodeID) float64
}

// LambdaModel turns a SignalInputs vector into a final fused score,
// replacing the fixed Weights dot product when a learned ranker is wired
// in; nil means the Weights passed to Recall are used.
type LambdaModel interface {
	Predict(inputs SignalInputs) float64
}

// DualEncoder scores semantic query/document similarity, folded into
// SignalInputs as an additional text-relevance component when available.
type DualEncoder interface {
	Similarity(query, text string) float64
}

// RecallRankingWebpage is one ranked candidate returned by Recall, carrying
// its fused score and the per-signal breakdown for diagnostics.
type RecallRankingWebpage struct {
	Candidate Candidate
	Score     float64
	Signals   map[Signal]SignalCalculation
}

// Query is the parsed, already-tokenized search request the recall stage
// scores candidates against.
type Query struct {
	Text           string
	QueryHostRank  float64 // centrality of the host the query itself resolves to, if any
	TimestampNowMJ float64 // "now" in the same unit AgeDays is measured against, for freshness
}

// Recall fuses each candidate's signals into a single score and returns
// candidates sorted by that score descending. It is a pure function of its
// inputs: no candidate or query state is retained across calls. centrality
// resolves each candidate's page-level derived centrality (see
// CentralityLookup); nil falls back to the host-rank-derived signal only.
func Recall(query Query, candidates []Candidate, inbound InboundScorer, lambda LambdaModel, dual DualEncoder, weights Weights, centrality CentralityLookup) []RecallRankingWebpage {
	out := make([]RecallRankingWebpage, len(candidates))
	for i, c := range candidates {
		inputs := signalInputsFor(query, c, inbound, dual, centrality)

		var score float64
		var breakdown map[Signal]SignalCalculation
		if lambda != nil {
			score = lambda.Predict(inputs)
			_, breakdown = aggregate(inputs, weights)
		} else {
			score, breakdown = aggregate(inputs, weights)
		}

		out[i] = RecallRankingWebpage{Candidate: c, Score: score, Signals: breakdown}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func signalInputsFor(query Query, c Candidate, inbound InboundScorer, dual DualEncoder, centrality CentralityLookup) SignalInputs {
	var in SignalInputs
	in[SignalBM25] = c.TextScore
	if dual != nil {
		in[SignalBM25] += dual.Similarity(query.Text, c.URL)
	}
	in[SignalHostCentrality] = invertRank(c.HostRank)
	if centrality != nil {
		in[SignalPageCentrality] = centrality.Centrality(c.PageID)
	} else {
		in[SignalPageCentrality] = invertRank(c.HostRank) // no page-level centrality supplied: fold in via the host rank scale
	}
	in[SignalQueryCentrality] = query.QueryHostRank
	if inbound != nil {
		in[SignalInboundSimilarity] = inbound.Score(c.HostID)
	}
	in[SignalFreshness] = freshness(query.TimestampNowMJ, c.AgeDays)
	in[SignalURLShape] = urlShape(c)
	return in
}

// invertRank turns a dense rank (1 = best) into a score that increases with
// centrality, so higher is always better across every signal.
func invertRank(rank float64) float64 {
	if rank <= 0 {
		return 0
	}
	return 1.0 / rank
}

func freshness(now, ageDays float64) float64 {
	if ageDays < 0 {
		return 0
	}
	const halfLifeDays = 365.0
	decay := ageDays / halfLifeDays
	if decay > 10 {
		return 0
	}
	return 1.0 / (1.0 + decay)
}

func urlShape(c Candidate) float64 {
	score := 0.0
	if c.IsHTTPS {
		score += 0.5
	}
	if c.PathSegments <= 2 {
		score += 0.5
	}
	return score
}
