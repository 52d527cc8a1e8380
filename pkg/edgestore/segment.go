package edgestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lanterngraph/core/pkg/binformat"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
)

// directionIndex is one symmetric half of a Segment: a destination-record
// array, its parallel rel-flag byte array, a block-compressed label
// sequence, and a node_id → NodeRange map. A node's destination records and
// its labels are written in the same order, so one Range addresses both:
// record i's label is always flat label index i.
type directionIndex struct {
	records    *recordFile
	relFlags   *os.File
	labels     *labelBlockFile
	nodeRanges *kvstore.Store
}

func openDirectionIndex(dir string, readOnly bool) (*directionIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("edgestore: mkdir %s: %w", dir, err)
	}
	records, err := openRecordFile(filepath.Join(dir, "records.bin"), readOnly)
	if err != nil {
		return nil, err
	}
	flagsFlag := os.O_RDWR | os.O_CREATE
	if readOnly {
		flagsFlag = os.O_RDONLY
	}
	relFlags, err := os.OpenFile(filepath.Join(dir, "relflags.bin"), flagsFlag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("edgestore: open rel flags file: %w", err)
	}
	labels, err := openLabelBlockFile(filepath.Join(dir, "labels.bin"))
	if err != nil {
		return nil, err
	}
	nodeRanges, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(dir, "node_ranges"), ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &directionIndex{records: records, relFlags: relFlags, labels: labels, nodeRanges: nodeRanges}, nil
}

func (d *directionIndex) close() error {
	_ = d.records.close()
	_ = d.relFlags.Close()
	_ = d.labels.close()
	return d.nodeRanges.Close()
}

func (d *directionIndex) readRelFlags(start, end uint64) (RelFlags, error) {
	if end <= start {
		return 0, nil
	}
	buf := make([]byte, end-start)
	if _, err := d.relFlags.ReadAt(buf, int64(start)); err != nil {
		return 0, fmt.Errorf("edgestore: read rel flags [%d,%d): %w", start, end, err)
	}
	var acc RelFlags
	for _, b := range buf {
		acc |= RelFlags(b)
	}
	return acc, nil
}

// Segment is one on-disk forward+reversed adjacency pair plus the shared
// host→page membership index: the basic unit a webgraph shard is built from.
type Segment struct {
	dir      string
	forward   *directionIndex
	reversed  *directionIndex
	hosts     *kvstore.Store
	pageHosts *kvstore.Store
}

// OpenSegment opens an existing segment directory, or creates one if absent.
func OpenSegment(dir string, readOnly bool) (*Segment, error) {
	forward, err := openDirectionIndex(filepath.Join(dir, "forward"), readOnly)
	if err != nil {
		return nil, err
	}
	reversed, err := openDirectionIndex(filepath.Join(dir, "reversed"), readOnly)
	if err != nil {
		return nil, err
	}
	hosts, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(dir, "hosts"), ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	pageHosts, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(dir, "page_hosts"), ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}
	return &Segment{dir: dir, forward: forward, reversed: reversed, hosts: hosts, pageHosts: pageHosts}, nil
}

// Close releases every file and store handle the segment holds.
func (s *Segment) Close() error {
	_ = s.forward.close()
	_ = s.reversed.close()
	_ = s.hosts.Close()
	return s.pageHosts.Close()
}

// HostOfPage returns the host id a page was recorded under, or ok=false if
// the page was never seen by this segment's writer.
func (s *Segment) HostOfPage(page ids.NodeID) (host ids.NodeID, ok bool, err error) {
	raw, err := s.pageHosts.Get(binformat.NodeIDKey(uint64(page)))
	if err == kvstore.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ids.NodeID(binformat.ParseUint64LE(raw)), true, nil
}

func (s *Segment) indexFor(dir Direction) *directionIndex {
	if dir == Forward {
		return s.forward
	}
	return s.reversed
}

// Edges returns node's edges in the given direction, windowed by limit.
func (s *Segment) Edges(node ids.NodeID, dir Direction, limit EdgeLimit) ([]Edge, error) {
	idx := s.indexFor(dir)

	raw, err := idx.nodeRanges.Get(binformat.NodeIDKey(uint64(node)))
	if err == kvstore.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("edgestore: lookup node range: %w", err)
	}
	nr := binformat.GetNodeRange(raw)

	total := int(nr.Range.Len())
	start, end := limit.window(total)
	if start >= end {
		return nil, nil
	}
	recStart := nr.Range.Start + uint64(start)
	recEnd := nr.Range.Start + uint64(end)

	records, err := idx.records.readRange(recStart, recEnd)
	if err != nil {
		return nil, err
	}

	out := make([]Edge, len(records))
	for i, rec := range records {
		flatIdx := int(recStart) + i
		label, err := idx.labels.labelAt(flatIdx)
		if err != nil {
			return nil, err
		}
		rel, err := idx.readRelFlags(uint64(flatIdx), uint64(flatIdx)+1)
		if err != nil {
			return nil, err
		}
		edge := Edge{From: node, To: ids.NodeID(rec.NodeID), Label: label, Rel: rel, SortKey: rec.SortKey}
		if dir == Reversed {
			edge.From, edge.To = ids.NodeID(rec.NodeID), node
		}
		out[i] = edge
	}
	return out, nil
}

// HostHasPage reports whether host (as a NodeID) is recorded as having page
// (as a NodeID) among its member pages.
func (s *Segment) HostHasPage(host, page ids.NodeID) (bool, error) {
	_, err := s.hosts.Get(binformat.HostPageKey(uint64(host), uint64(page)))
	if err == kvstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PagesByHost scans every page recorded under host, stopping early if fn
// returns false.
func (s *Segment) PagesByHost(host ids.NodeID, fn func(page ids.NodeID) bool) error {
	prefix := binformat.Uint64LE(uint64(host))
	return s.hosts.ScanPrefix(prefix, func(key, _ []byte) error {
		_, page := binformat.ParseHostPageKey(key)
		if !fn(ids.NodeID(page)) {
			return kvstore.ErrStopIteration
		}
		return nil
	})
}

// WalkHostMembership calls fn for every (host, page) pair recorded by this
// segment's writer, used by callers that need the full node set rather
// than one host's pages.
func (s *Segment) WalkHostMembership(fn func(host, page ids.NodeID)) error {
	return s.hosts.ScanPrefix(nil, func(key, _ []byte) error {
		host, page := binformat.ParseHostPageKey(key)
		fn(ids.NodeID(host), ids.NodeID(page))
		return nil
	})
}
