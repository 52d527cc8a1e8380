package edgestore

import (
	"fmt"
	"sort"

	"github.com/lanterngraph/core/pkg/binformat"
	"github.com/lanterngraph/core/pkg/ids"
)

// Writer buffers Insertions and packs them into a new Segment on Finalize.
//
// Finalize sorts the whole insertion batch in memory rather than
// external-merge-sorting it to disk, trading unbounded memory for
// simplicity at moderate segment sizes; a multi-billion-edge segment would
// need a disk-backed merge sort instead.
type Writer struct {
	insertions []Insertion
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Insert buffers one edge for the next Finalize.
func (w *Writer) Insert(ins Insertion) {
	w.insertions = append(w.insertions, ins)
}

// Len reports the number of buffered insertions.
func (w *Writer) Len() int { return len(w.insertions) }

type oriented struct {
	key     ids.NodeID
	dest    ids.NodeID
	label   string
	rel     RelFlags
	sortKey uint64
}

// Finalize sorts the buffered insertions, packs them into dir as a new
// Segment, and returns the opened segment.
func (w *Writer) Finalize(dir string) (*Segment, error) {
	forward := make([]oriented, 0, len(w.insertions))
	reversed := make([]oriented, 0, len(w.insertions))
	for _, ins := range w.insertions {
		forward = append(forward, oriented{
			key: ins.From.ID(), dest: ins.To.ID(), label: ins.Label, rel: ins.Rel, sortKey: ins.SortKeySrc,
		})
		reversed = append(reversed, oriented{
			key: ins.To.ID(), dest: ins.From.ID(), label: ins.Label, rel: ins.Rel, sortKey: ins.SortKeySrc,
		})
	}

	seg, err := OpenSegment(dir, false)
	if err != nil {
		return nil, err
	}

	if err := packDirection(seg.forward, forward); err != nil {
		return nil, fmt.Errorf("edgestore: pack forward index: %w", err)
	}
	if err := packDirection(seg.reversed, reversed); err != nil {
		return nil, fmt.Errorf("edgestore: pack reversed index: %w", err)
	}

	if err := writeHostMembership(seg, w.insertions); err != nil {
		return nil, fmt.Errorf("edgestore: write host membership: %w", err)
	}

	return seg, nil
}

// packDirection sorts entries by (key asc, sortKey desc) — so each node's
// destination array is pre-ranked highest-sort-key-first — then appends the
// grouped runs to idx's records, rel-flag, and label files, recording each
// node's [start,end) window in idx.nodeRanges.
func packDirection(idx *directionIndex, entries []oriented) error {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].sortKey > entries[j].sortKey
	})

	var pendingLabels []string
	flushLabels := func() error {
		if len(pendingLabels) == 0 {
			return nil
		}
		if _, err := idx.labels.appendBlock(pendingLabels); err != nil {
			return err
		}
		pendingLabels = pendingLabels[:0]
		return nil
	}

	i := 0
	for i < len(entries) {
		j := i
		key := entries[i].key
		for j < len(entries) && entries[j].key == key {
			j++
		}
		group := entries[i:j]

		records := make([]binformat.DestRecord, len(group))
		relBytes := make([]byte, len(group))
		for k, e := range group {
			records[k] = binformat.DestRecord{NodeID: uint64(e.dest), SortKey: e.sortKey}
			relBytes[k] = byte(e.rel)
			pendingLabels = append(pendingLabels, e.label)
			if len(pendingLabels) == labelsPerBlock {
				if err := flushLabels(); err != nil {
					return err
				}
			}
		}

		startIdx, err := idx.records.appendRecords(records)
		if err != nil {
			return err
		}
		if _, err := idx.relFlags.WriteAt(relBytes, int64(startIdx)); err != nil {
			return fmt.Errorf("edgestore: write rel flags: %w", err)
		}

		nr := binformat.NodeRange{
			Range:   binformat.Range{Start: startIdx, End: startIdx + uint64(len(group))},
			SortKey: group[0].sortKey,
		}
		buf := make([]byte, binformat.NodeRangeSize)
		binformat.PutNodeRange(buf, nr)
		if err := idx.nodeRanges.Set(binformat.NodeIDKey(uint64(key)), buf); err != nil {
			return err
		}

		i = j
	}
	return flushLabels()
}

// writeHostMembership records every page reachable as either endpoint of an
// insertion under its host, so pages discoverable only as a link target
// (never crawled themselves) still surface in PagesByHost — the property
// host-level webgraph queries and the centrality node sets rely on.
func writeHostMembership(seg *Segment, insertions []Insertion) error {
	hostsBatch := seg.hosts.NewBatch()
	pageHostsBatch := seg.pageHosts.NewBatch()
	seen := make(map[[2]ids.NodeID]struct{})
	add := func(page ids.Node) {
		host := page.IntoHost().ID()
		key := [2]ids.NodeID{host, page.ID()}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		hostsBatch.Put(binformat.HostPageKey(uint64(host), uint64(page.ID())), nil)
		pageHostsBatch.Put(binformat.NodeIDKey(uint64(page.ID())), binformat.Uint64LE(uint64(host)))
	}
	for _, ins := range insertions {
		add(ins.From)
		add(ins.To)
	}
	if err := hostsBatch.Commit(); err != nil {
		return err
	}
	return pageHostsBatch.Commit()
}
