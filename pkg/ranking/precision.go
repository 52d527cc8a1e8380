package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// resultsPerPage bounds how much of the recall list the precision stage
// ever touches: reranking beyond the first two pages a user could plausibly
// view isn't worth the latency.
const resultsPerPage = 10
const precisionPageLimit = 2 * resultsPerPage

// CrossEncoderConfig configures the precision-stage HTTP reranker.
type CrossEncoderConfig struct {
	Enabled bool          `yaml:"enabled"`
	APIURL  string        `yaml:"api_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultCrossEncoderConfig returns a disabled reranker pointed at a local
// inference service, matching the pattern used elsewhere in this module
// for optional external model calls.
func DefaultCrossEncoderConfig() CrossEncoderConfig {
	return CrossEncoderConfig{
		Enabled: false,
		APIURL:  "http://localhost:8081/rerank",
		Model:   "cross-encoder/ms-marco-MiniLM-L-6-v2",
		Timeout: 10 * time.Second,
	}
}

// CrossEncoder calls an external reranking service over HTTP.
type CrossEncoder struct {
	cfg    CrossEncoderConfig
	client *http.Client
}

// NewCrossEncoder constructs a CrossEncoder bound to cfg.
func NewCrossEncoder(cfg CrossEncoderConfig) *CrossEncoder {
	return &CrossEncoder{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Precision reorders the top of recall's output using ce, if enabled and
// reachable; the rest of the list (beyond precisionPageLimit) passes
// through untouched and unscored by the cross-encoder. The cross-encoder
// score replaces the fused score of every head entry outright; lambda is
// accepted but not used, so no blending with the fused score takes place.
func (ce *CrossEncoder) Precision(ctx context.Context, query Query, ranked []RecallRankingWebpage, lambda LambdaModel) ([]RecallRankingWebpage, error) {
	if ce == nil || !ce.cfg.Enabled || len(ranked) == 0 {
		return ranked, nil
	}

	head := ranked
	tail := []RecallRankingWebpage(nil)
	if len(ranked) > precisionPageLimit {
		head = ranked[:precisionPageLimit]
		tail = ranked[precisionPageLimit:]
	}

	scores, err := ce.score(ctx, query.Text, head)
	if err != nil {
		return ranked, fmt.Errorf("ranking: precision stage: %w", err)
	}

	reranked := make([]RecallRankingWebpage, len(head))
	for i, w := range head {
		w.Score = scores[i]
		reranked[i] = w
	}
	sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })

	return append(reranked, tail...), nil
}

func (ce *CrossEncoder) score(ctx context.Context, query string, head []RecallRankingWebpage) ([]float64, error) {
	documents := make([]string, len(head))
	for i, w := range head {
		documents[i] = w.Candidate.URL
	}

	body, err := json.Marshal(map[string]any{
		"query":     query,
		"documents": documents,
		"model":     ce.cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ce.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ce.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call rerank service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank service returned status %d", resp.StatusCode)
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != len(head) {
		return nil, fmt.Errorf("rerank service returned %d scores for %d documents", len(result.Scores), len(head))
	}
	return result.Scores, nil
}
