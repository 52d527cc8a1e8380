package ranking

import (
	"github.com/lanterngraph/core/pkg/centrality/derived"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
)

// DerivedCentralityLookup adapts the badger-backed store cmd/lantern's
// `centrality derived` subcommand populates into CentralityLookup, reading
// each candidate's page-level score through derived.Lookup. A failed or
// missing read scores as 0 rather than erroring Recall for one candidate.
type DerivedCentralityLookup struct {
	Store *kvstore.Store
}

// Centrality implements CentralityLookup.
func (d DerivedCentralityLookup) Centrality(page ids.NodeID) float64 {
	score, err := derived.Lookup(d.Store, page)
	if err != nil {
		return 0
	}
	return score
}
