package ranking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lanterngraph/core/pkg/ids"
	"github.com/stretchr/testify/require"
)

type fixedInbound struct{ scores map[ids.NodeID]float64 }

func (f fixedInbound) Score(n ids.NodeID) float64 { return f.scores[n] }

func TestRecallOrdersByFusedScoreDescending(t *testing.T) {
	candidates := []Candidate{
		{PageID: 1, HostID: 10, URL: "https://a.example/", TextScore: 1.0, HostRank: 5},
		{PageID: 2, HostID: 20, URL: "https://b.example/", TextScore: 5.0, HostRank: 1},
	}
	inbound := fixedInbound{scores: map[ids.NodeID]float64{10: 0.1, 20: 0.9}}

	ranked := Recall(Query{Text: "golang"}, candidates, inbound, nil, nil, DefaultWeights(), nil)
	require.Len(t, ranked, 2)
	require.Equal(t, ids.NodeID(2), ranked[0].Candidate.PageID)
	require.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRecallBreakdownSumsToScore(t *testing.T) {
	candidates := []Candidate{{PageID: 1, HostID: 10, TextScore: 2.0, HostRank: 2}}
	ranked := Recall(Query{}, candidates, nil, nil, nil, DefaultWeights(), nil)
	require.Len(t, ranked, 1)

	sum := 0.0
	for _, calc := range ranked[0].Signals {
		sum += calc.Contribution
	}
	require.InDelta(t, ranked[0].Score, sum, 1e-9)
}

func TestPrecisionPassesThroughWhenDisabled(t *testing.T) {
	ce := NewCrossEncoder(DefaultCrossEncoderConfig())
	ranked := []RecallRankingWebpage{{Candidate: Candidate{PageID: 1}, Score: 1.0}}

	out, err := ce.Precision(context.Background(), Query{Text: "x"}, ranked, nil)
	require.NoError(t, err)
	require.Equal(t, ranked, out)
}

func TestPrecisionRerankUsesServiceScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"scores": []float64{0.1, 0.9}})
	}))
	defer srv.Close()

	ce := NewCrossEncoder(CrossEncoderConfig{Enabled: true, APIURL: srv.URL, Model: "test"})
	ranked := []RecallRankingWebpage{
		{Candidate: Candidate{PageID: 1, URL: "https://a.example"}, Score: 0.5},
		{Candidate: Candidate{PageID: 2, URL: "https://b.example"}, Score: 0.4},
	}

	out, err := ce.Precision(context.Background(), Query{Text: "q"}, ranked, nil)
	require.NoError(t, err)
	require.Equal(t, ids.NodeID(2), out[0].Candidate.PageID)
}

func TestPrecisionLeavesTailBeyondPageLimitUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Documents []string `json:"documents"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		scores := make([]float64, len(req.Documents))
		json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	}))
	defer srv.Close()

	ce := NewCrossEncoder(CrossEncoderConfig{Enabled: true, APIURL: srv.URL})
	var ranked []RecallRankingWebpage
	for i := 0; i < precisionPageLimit+5; i++ {
		ranked = append(ranked, RecallRankingWebpage{Candidate: Candidate{PageID: ids.NodeID(i)}, Score: float64(-i)})
	}

	out, err := ce.Precision(context.Background(), Query{}, ranked, nil)
	require.NoError(t, err)
	require.Len(t, out, len(ranked))
	require.Equal(t, ranked[precisionPageLimit:], out[precisionPageLimit:])
}
