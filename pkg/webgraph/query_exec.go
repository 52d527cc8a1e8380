package webgraph

import (
	"fmt"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/sketch"
)

// Result is what Execute returns, with only the field matching the
// collector/query combination populated.
type Result struct {
	Edges      []ScoredEdge
	FullEdges  []edgestore.Edge
	Groups     map[ids.NodeID]map[ids.NodeID]struct{}
	GroupSketches map[ids.NodeID]*sketch.HyperLogLog
}

// Execute resolves q against every segment in shard, applies filters at
// collection time, and folds the surviving edges through collector.
func Execute(shard *Shard, q Query, filters []Filter, collector Collector) (Result, error) {
	switch query := q.(type) {
	case BacklinksQuery:
		return execSimple(shard, query.Node, edgestore.Reversed, filters, collector, false)
	case ForwardlinksQuery:
		return execSimple(shard, query.Node, edgestore.Forward, filters, collector, false)
	case FullBacklinksQuery:
		return execSimple(shard, query.Node, edgestore.Reversed, filters, collector, true)
	case FullForwardlinksQuery:
		return execSimple(shard, query.Node, edgestore.Forward, filters, collector, true)
	case HostBacklinksQuery:
		return execHostDedup(shard, query.Host, edgestore.Reversed, filters, collector)
	case HostForwardlinksQuery:
		return execHostDedup(shard, query.Host, edgestore.Forward, filters, collector)
	case LinksBetweenQuery:
		return execLinksBetween(shard, query.From, query.To, filters)
	case Id2NodeQuery:
		return execId2Node(shard, query)
	case HostGroupQuery:
		return execHostGroup(shard, query.Host, query.Dir, filters, false)
	case HostGroupSketchQuery:
		return execHostGroup(shard, query.Host, query.Dir, filters, true)
	default:
		return Result{}, fmt.Errorf("webgraph: unknown query type %T", q)
	}
}

func acceptAll(e edgestore.Edge, shard *Shard, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	view := toEdgeView(shard, e)
	for _, f := range filters {
		if !f.Accept(view) {
			return false
		}
	}
	return true
}

func toEdgeView(shard *Shard, e edgestore.Edge) EdgeView {
	view := EdgeView{FromID: uint64(e.From), ToID: uint64(e.To), Label: e.Label, Rel: uint8(e.Rel)}
	if host, ok, _ := hostOfPage(shard, e.From); ok {
		view.FromHostID = uint64(host)
	}
	if host, ok, _ := hostOfPage(shard, e.To); ok {
		view.ToHostID = uint64(host)
	}
	return view
}

func hostOfPage(shard *Shard, page ids.NodeID) (ids.NodeID, bool, error) {
	for _, seg := range shard.Segments {
		if host, ok, err := seg.HostOfPage(page); ok || err != nil {
			return host, ok, err
		}
	}
	return 0, false, nil
}

func execSimple(shard *Shard, node ids.NodeID, dir edgestore.Direction, filters []Filter, collector Collector, full bool) (Result, error) {
	var scored []ScoredEdge
	var fullEdges []edgestore.Edge
	for _, seg := range shard.Segments {
		edges, err := seg.Edges(node, dir, edgestore.EdgeLimit{})
		if err != nil {
			return Result{}, err
		}
		for _, e := range edges {
			if !acceptAll(e, shard, filters) {
				continue
			}
			scored = append(scored, ScoredEdge{FromID: uint64(e.From), ToID: uint64(e.To), SortScore: e.SortKey, Label: e.Label, Rel: uint8(e.Rel)})
			if full {
				fullEdges = append(fullEdges, e)
			}
		}
	}
	if td, ok := collector.(TopDocsCollector); ok {
		scored = collectTopDocs(scored, td)
		if full {
			fullEdges = filterFullToScored(fullEdges, scored)
		}
	}
	return Result{Edges: scored, FullEdges: fullEdges}, nil
}

func filterFullToScored(full []edgestore.Edge, scored []ScoredEdge) []edgestore.Edge {
	keep := make(map[[2]uint64]bool, len(scored))
	for _, s := range scored {
		keep[[2]uint64{s.FromID, s.ToID}] = true
	}
	out := full[:0]
	for _, e := range full {
		if keep[[2]uint64{uint64(e.From), uint64(e.To)}] {
			out = append(out, e)
		}
	}
	return out
}

// execHostDedup implements the host-level dedup described in :
// only the highest-SortScore edge per distinct neighbor host survives.
func execHostDedup(shard *Shard, host ids.NodeID, dir edgestore.Direction, filters []Filter, collector Collector) (Result, error) {
	var all []edgestore.Edge
	err := shard.scanHostPages(host, func(page ids.NodeID) error {
		for _, seg := range shard.Segments {
			edges, err := seg.Edges(page, dir, edgestore.EdgeLimit{})
			if err != nil {
				return err
			}
			all = append(all, edges...)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	bestPerHost := make(map[ids.NodeID]edgestore.Edge)
	for _, e := range all {
		if !acceptAll(e, shard, filters) {
			continue
		}
		var neighbor ids.NodeID
		if dir == edgestore.Reversed {
			neighbor, _, _ = hostOfPage(shard, e.From)
		} else {
			neighbor, _, _ = hostOfPage(shard, e.To)
		}
		if cur, ok := bestPerHost[neighbor]; !ok || e.SortKey > cur.SortKey {
			bestPerHost[neighbor] = e
		}
	}

	scored := make([]ScoredEdge, 0, len(bestPerHost))
	for _, e := range bestPerHost {
		scored = append(scored, ScoredEdge{FromID: uint64(e.From), ToID: uint64(e.To), SortScore: e.SortKey, Label: e.Label, Rel: uint8(e.Rel)})
	}
	if td, ok := collector.(TopDocsCollector); ok {
		scored = collectTopDocs(scored, td)
	}
	return Result{Edges: scored}, nil
}

func execLinksBetween(shard *Shard, from, to ids.NodeID, filters []Filter) (Result, error) {
	var scored []ScoredEdge
	for _, seg := range shard.Segments {
		edges, err := seg.Edges(from, edgestore.Forward, edgestore.EdgeLimit{})
		if err != nil {
			return Result{}, err
		}
		for _, e := range edges {
			if e.To != to {
				continue
			}
			if !acceptAll(e, shard, filters) {
				continue
			}
			scored = append(scored, ScoredEdge{FromID: uint64(e.From), ToID: uint64(e.To), SortScore: e.SortKey, Label: e.Label, Rel: uint8(e.Rel)})
		}
	}
	return Result{Edges: scored}, nil
}

func execId2Node(shard *Shard, q Id2NodeQuery) (Result, error) {
	for _, seg := range shard.Segments {
		var dir edgestore.Direction
		if q.Field == FieldFromID {
			dir = edgestore.Forward
		} else {
			dir = edgestore.Reversed
		}
		edges, err := seg.Edges(q.ID, dir, edgestore.LimitN(1))
		if err != nil {
			return Result{}, err
		}
		if len(edges) > 0 {
			e := edges[0]
			return Result{Edges: []ScoredEdge{{FromID: uint64(e.From), ToID: uint64(e.To), SortScore: e.SortKey, Label: e.Label, Rel: uint8(e.Rel)}}}, nil
		}
	}
	return Result{}, nil
}

func execHostGroup(shard *Shard, host ids.NodeID, dir edgestore.Direction, filters []Filter, asSketch bool) (Result, error) {
	groups := make(map[ids.NodeID]map[ids.NodeID]struct{})
	err := shard.scanHostPages(host, func(page ids.NodeID) error {
		for _, seg := range shard.Segments {
			edges, err := seg.Edges(page, dir, edgestore.EdgeLimit{})
			if err != nil {
				return err
			}
			for _, e := range edges {
				if !acceptAll(e, shard, filters) {
					continue
				}
				var neighbor, target ids.NodeID
				if dir == edgestore.Reversed {
					neighbor, _, _ = hostOfPage(shard, e.From)
					target = e.From
				} else {
					neighbor, _, _ = hostOfPage(shard, e.To)
					target = e.To
				}
				if groups[neighbor] == nil {
					groups[neighbor] = make(map[ids.NodeID]struct{})
				}
				groups[neighbor][target] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !asSketch {
		return Result{Groups: groups}, nil
	}

	sketches := make(map[ids.NodeID]*sketch.HyperLogLog, len(groups))
	for host, members := range groups {
		hll := sketch.New()
		for member := range members {
			hll.Add(uint64(member))
		}
		sketches[host] = hll
	}
	return Result{GroupSketches: sketches}, nil
}

// scanHostPages calls fn for every page recorded under host across every
// segment in shard, stopping at the first error.
func (s *Shard) scanHostPages(host ids.NodeID, fn func(page ids.NodeID) error) error {
	for _, seg := range s.Segments {
		var outerErr error
		err := seg.PagesByHost(host, func(page ids.NodeID) bool {
			if err := fn(page); err != nil {
				outerErr = err
				return false
			}
			return true
		})
		if outerErr != nil {
			return outerErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
