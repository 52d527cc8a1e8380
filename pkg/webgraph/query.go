package webgraph

import (
	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
)

// Query is the closed set of query variants the webgraph understands.
// Every Query is resolved by Execute against a single Shard.
type Query interface{ isQuery() }

// BacklinksQuery returns edges whose destination is Node.
type BacklinksQuery struct{ Node ids.NodeID }

// ForwardlinksQuery returns edges whose source is Node.
type ForwardlinksQuery struct{ Node ids.NodeID }

// HostBacklinksQuery is BacklinksQuery deduplicated to the single
// highest-ranked edge per distinct source host.
type HostBacklinksQuery struct{ Host ids.NodeID }

// HostForwardlinksQuery is ForwardlinksQuery deduplicated to the single
// highest-ranked edge per distinct destination host.
type HostForwardlinksQuery struct{ Host ids.NodeID }

// FullBacklinksQuery is BacklinksQuery with fully hydrated labels.
type FullBacklinksQuery struct{ Node ids.NodeID }

// FullForwardlinksQuery is ForwardlinksQuery with fully hydrated labels.
type FullForwardlinksQuery struct{ Node ids.NodeID }

// LinksBetweenQuery returns edges directly connecting From to To.
type LinksBetweenQuery struct{ From, To ids.NodeID }

// IDField selects which id column Id2NodeQuery matches against.
type IDField int

const (
	FieldFromID IDField = iota
	FieldToID
)

// Id2NodeQuery returns the first edge whose chosen id column matches ID, so
// the caller can recover the node's URL payload from it.
type Id2NodeQuery struct {
	ID    ids.NodeID
	Field IDField
}

// HostGroupQuery groups a host's edges by the opposite-host column,
// returning, for each neighbor host, the exact set of distinct neighbor
// page ids.
type HostGroupQuery struct{ Host ids.NodeID; Dir edgestore.Direction }

// HostGroupSketchQuery is HostGroupQuery but collects a HyperLogLog sketch
// per group instead of an exact set, for cardinality-only callers.
type HostGroupSketchQuery struct{ Host ids.NodeID; Dir edgestore.Direction }

func (BacklinksQuery) isQuery()          {}
func (ForwardlinksQuery) isQuery()       {}
func (HostBacklinksQuery) isQuery()      {}
func (HostForwardlinksQuery) isQuery()   {}
func (FullBacklinksQuery) isQuery()      {}
func (FullForwardlinksQuery) isQuery()   {}
func (LinksBetweenQuery) isQuery()       {}
func (Id2NodeQuery) isQuery()            {}
func (HostGroupQuery) isQuery()          {}
func (HostGroupSketchQuery) isQuery()    {}
