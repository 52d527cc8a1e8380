// Package ranking implements the two-stage recall/precision pipeline that
// turns per-shard candidates into a final ranked result list: a fused-score
// recall stage fast enough to run over every matching document, and an
// optional cross-encoder precision stage applied only to the pages a user
// is likely to actually see.
package ranking

// Signal is the closed set of scoring inputs the aggregator knows how to
// combine. New signals require a recompile, not a config change — the
// weight vector is the only thing callers can tune at runtime.
type Signal int

const (
	SignalBM25 Signal = iota
	SignalHostCentrality
	SignalPageCentrality
	SignalQueryCentrality
	SignalInboundSimilarity
	SignalFreshness
	SignalURLShape
	numSignals
)

func (s Signal) String() string {
	switch s {
	case SignalBM25:
		return "bm25"
	case SignalHostCentrality:
		return "host_centrality"
	case SignalPageCentrality:
		return "page_centrality"
	case SignalQueryCentrality:
		return "query_centrality"
	case SignalInboundSimilarity:
		return "inbound_similarity"
	case SignalFreshness:
		return "freshness"
	case SignalURLShape:
		return "url_shape"
	default:
		return "unknown"
	}
}

// SignalCalculation is one signal's raw score and its weighted contribution
// to the fused score, returned alongside the final rank so a caller can
// explain why a document ranked where it did.
type SignalCalculation struct {
	Score        float64
	Contribution float64
}

// Weights maps each Signal to the coefficient the aggregator multiplies its
// raw score by before summing.
type Weights [numSignals]float64

// DefaultWeights returns a balanced starting point; callers tune this per
// deployment rather than the pipeline hardcoding a single "correct" mix.
func DefaultWeights() Weights {
	var w Weights
	w[SignalBM25] = 1.0
	w[SignalHostCentrality] = 0.4
	w[SignalPageCentrality] = 0.3
	w[SignalQueryCentrality] = 0.2
	w[SignalInboundSimilarity] = 0.5
	w[SignalFreshness] = 0.1
	w[SignalURLShape] = 0.05
	return w
}

// SignalInputs holds one candidate's raw per-signal scores, supplied by the
// caller (text matcher, centrality stores, C4/C5 scorers) before the
// aggregator fuses them.
type SignalInputs [numSignals]float64

// aggregate multiplies every signal's raw score by its weight and sums the
// result, returning both the fused score and the per-signal breakdown.
func aggregate(inputs SignalInputs, weights Weights) (float64, map[Signal]SignalCalculation) {
	breakdown := make(map[Signal]SignalCalculation, numSignals)
	total := 0.0
	for i := 0; i < int(numSignals); i++ {
		s := Signal(i)
		contribution := inputs[i] * weights[i]
		breakdown[s] = SignalCalculation{Score: inputs[i], Contribution: contribution}
		total += contribution
	}
	return total, breakdown
}
