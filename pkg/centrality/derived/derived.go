// Package derived implements a page-level centrality derived from host
// harmonic centrality and a capped sample of each page's ingoing edges,
// writing through github.com/dgraph-io/badger/v4 via pkg/kvstore the same
// way the storage engine streams bulk inserts.
package derived

import (
	"fmt"

	"github.com/lanterngraph/core/pkg/binformat"
	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
	"github.com/lanterngraph/core/pkg/webgraph"
)

// maxIngoingSample bounds per-page ingoing-edge sampling so memory use is
// deterministic regardless of a page's true in-degree.
const maxIngoingSample = 128

// commitEvery streams inserts to the durable store in batches, committing
// every commitEvery pending writes.
const commitEvery = 1_000_000

// HostHarmonic is the interface the derived engine reads host centrality
// through; centrality/harmonic.Snapshot.Scores satisfies it directly via a
// thin map wrapper (see MapHostHarmonic).
type HostHarmonic interface {
	Harmonic(host ids.NodeID) float64
}

// MapHostHarmonic adapts a plain map to HostHarmonic.
type MapHostHarmonic map[ids.NodeID]float64

func (m MapHostHarmonic) Harmonic(host ids.NodeID) float64 { return m[host] }

// Compute derives per-page centrality for every page with at least one
// outgoing edge in shard, writing node_id(u64 LE) → f64 LE pairs to store.
func Compute(shard *webgraph.Shard, hostHarmonic HostHarmonic, store *kvstore.Store) error {
	votesByHost := make(map[ids.NodeID]float64) // tracks the max votes(.) seen per host, for normalization
	type pending struct {
		page  ids.NodeID
		votes float64
		host  ids.NodeID
	}
	var results []pending

	err := walkAllPages(shard, func(page ids.NodeID) error {
		out, err := shardEdges(shard, page, edgestore.Forward)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return nil // no outgoing edges: not eligible
		}

		in, err := shardEdges(shard, page, edgestore.Reversed)
		if err != nil {
			return err
		}
		if len(in) > maxIngoingSample {
			in = in[:maxIngoingSample]
		}

		distinctHosts := make(map[ids.NodeID]struct{})
		for _, e := range in {
			if host, ok, err := hostOfAny(shard, e.From); ok && err == nil {
				distinctHosts[host] = struct{}{}
			}
		}

		votes := 0.0
		for host := range distinctHosts {
			votes += hostHarmonic.Harmonic(host)
		}

		host, ok, err := hostOfAny(shard, page)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if votes > votesByHost[host] {
			votesByHost[host] = votes
		}
		results = append(results, pending{page: page, votes: votes, host: host})
		return nil
	})
	if err != nil {
		return err
	}

	batch := store.NewBatch()
	for _, r := range results {
		norm := votesByHost[r.host]
		score := hostHarmonic.Harmonic(r.host) * r.votes
		if norm > 0 {
			score /= norm
		}
		batch.Put(binformat.NodeIDKey(uint64(r.page)), binformat.Float64LE(score))
		if batch.Len() >= commitEvery {
			if err := batch.Commit(); err != nil {
				return fmt.Errorf("derived: commit batch: %w", err)
			}
		}
	}
	return batch.Commit()
}

func hostOfAny(shard *webgraph.Shard, page ids.NodeID) (ids.NodeID, bool, error) {
	for _, seg := range shard.Segments {
		if host, ok, err := seg.HostOfPage(page); ok || err != nil {
			return host, ok, err
		}
	}
	return 0, false, nil
}

func shardEdges(shard *webgraph.Shard, node ids.NodeID, dir edgestore.Direction) ([]edgestore.Edge, error) {
	var all []edgestore.Edge
	for _, seg := range shard.Segments {
		edges, err := seg.Edges(node, dir, edgestore.EdgeLimit{})
		if err != nil {
			return nil, err
		}
		all = append(all, edges...)
	}
	return all, nil
}

func walkAllPages(shard *webgraph.Shard, fn func(page ids.NodeID) error) error {
	seen := make(map[ids.NodeID]struct{})
	var outerErr error
	for _, seg := range shard.Segments {
		err := seg.WalkHostMembership(func(_ ids.NodeID, page ids.NodeID) {
			if outerErr != nil {
				return
			}
			if _, ok := seen[page]; ok {
				return
			}
			seen[page] = struct{}{}
			if err := fn(page); err != nil {
				outerErr = err
			}
		})
		if err != nil {
			return err
		}
		if outerErr != nil {
			return outerErr
		}
	}
	return nil
}

// Lookup reads a single page's derived centrality from store, returning 0
// if absent.
func Lookup(store *kvstore.Store, page ids.NodeID) (float64, error) {
	raw, err := store.Get(binformat.NodeIDKey(uint64(page)))
	if err == kvstore.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binformat.ParseFloat64LE(raw), nil
}
