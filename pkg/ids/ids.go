// Package ids derives the stable node identifiers used throughout the
// webgraph: every URL or host is reduced to a 64-bit NodeID up front so the
// rest of the system never carries strings or pointers across a graph edge.
//
// A 128-bit form (ID128) is available where hash-collision risk matters more
// than the extra 8 bytes; no other package in this module calls it.
package ids

import (
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NodeID is the 64-bit stable identifier for a URL or a host.
type NodeID uint64

// ID128 is a 128-bit identifier built from two xxhash passes over the same
// string, the second prefixed with a fixed salt, for cases where the
// default NodeID's collision probability is too high for the data volume.
type ID128 [2]uint64

// Node is a canonicalized page or host identity. Exactly one of the two
// representations is meaningful for a given Node depending on IsHost.
type Node struct {
	// Canonical is the canonicalized string this id was derived from: a
	// full URL for a page node, a bare registrable host for a host node.
	Canonical string
	IsHost    bool
}

// ID returns the stable 64-bit identifier for n.
func (n Node) ID() NodeID {
	return NodeID(xxhash.Sum64String(n.Canonical))
}

// ID128 returns the 128-bit identifier for n, built from two unseeded
// xxhash digests: one of the canonical string, one of a fixed salt followed
// by the canonical string.
func (n Node) ID128() ID128 {
	d1 := xxhash.New()
	d1.WriteString(n.Canonical)
	lo := d1.Sum64()

	d2 := xxhash.New()
	d2.WriteString("lanterngraph-salt-b\x00")
	d2.WriteString(n.Canonical)
	hi := d2.Sum64()

	return ID128{lo, hi}
}

// IntoHost returns the host-level Node for n. IntoHost is idempotent:
// calling it on an already-host Node returns an equal Node.
func (n Node) IntoHost() Node {
	if n.IsHost {
		return n
	}
	return Node{Canonical: HostOf(n.Canonical), IsHost: true}
}

// HostOf extracts the registrable host from a canonicalized URL string.
// Input that does not parse as a URL with a host is treated as a bare
// host: its part before the first "/" is returned lowercased, or the input
// unchanged when that part is empty. It never returns an error, matching
// the "missing node returns empty sequence, never a fatal error" posture
// of the read path.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Already looks like a bare host (no scheme).
		if h := strings.SplitN(rawURL, "/", 2)[0]; h != "" {
			return strings.ToLower(h)
		}
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}

// NewPage builds a page-level Node from a raw URL string.
func NewPage(rawURL string) Node {
	return Node{Canonical: rawURL, IsHost: false}
}

// NewHost builds a host-level Node from a raw host string.
func NewHost(host string) Node {
	return Node{Canonical: strings.ToLower(host), IsHost: true}
}
