// Package webgraph implements a sharded, append-only collection of
// edgestore segments with a small Tantivy-style query algebra layered on
// top — queries, filters, and collectors as closed, tagged variants rather
// than open interfaces, discovered from a data directory the same way a
// storage engine discovers its on-disk units.
package webgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
)

// Shard owns an ordered slice of segments plus its shard id. A node id
// belongs to exactly one shard, determined by ShardOf.
type Shard struct {
	ID       uint64
	Segments []*edgestore.Segment
}

// ShardOf computes the stable shard a node id maps to, given numShards.
func ShardOf(node ids.NodeID, numShards uint64) uint64 {
	if numShards == 0 {
		return 0
	}
	return uint64(node) % numShards
}

// Close releases every segment this shard owns.
func (s *Shard) Close() error {
	var firstErr error
	for _, seg := range s.Segments {
		if err := seg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Webgraph is the disjoint union of shards discovered from a data
// directory, each holding an ordered run of segments.
type Webgraph struct {
	Dir    string
	Shards []*Shard
}

// Open discovers shard subdirectories ("shard-<id>/segment-<n>") beneath
// dir and opens every segment read-only. Missing dir is not an error: an
// empty Webgraph is returned, matching a freshly initialized data
// directory that has not been built yet.
func Open(dir string) (*Webgraph, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return &Webgraph{Dir: dir}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("webgraph: read %s: %w", dir, err)
	}

	var shardDirs []string
	for _, e := range entries {
		if e.IsDir() {
			shardDirs = append(shardDirs, e.Name())
		}
	}
	sort.Strings(shardDirs)

	wg := &Webgraph{Dir: dir}
	for _, sd := range shardDirs {
		var shardID uint64
		if _, err := fmt.Sscanf(sd, "shard-%d", &shardID); err != nil {
			continue
		}
		shard, err := openShard(filepath.Join(dir, sd), shardID)
		if err != nil {
			return nil, err
		}
		wg.Shards = append(wg.Shards, shard)
	}
	return wg, nil
}

func openShard(dir string, id uint64) (*Shard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("webgraph: read shard dir %s: %w", dir, err)
	}
	var segDirs []string
	for _, e := range entries {
		if e.IsDir() {
			segDirs = append(segDirs, e.Name())
		}
	}
	sort.Strings(segDirs)

	shard := &Shard{ID: id}
	for _, sd := range segDirs {
		seg, err := edgestore.OpenSegment(filepath.Join(dir, sd), true)
		if err != nil {
			return nil, err
		}
		shard.Segments = append(shard.Segments, seg)
	}
	return shard, nil
}

// Close releases every shard's segments.
func (w *Webgraph) Close() error {
	var firstErr error
	for _, s := range w.Shards {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AppendSegment adds seg, already finalized by an edgestore.Writer, to the
// shard with id shardID. Segments append; nothing is rewritten in
// place, matching "Writers append new segments."
func (w *Webgraph) AppendSegment(shardID uint64, seg *edgestore.Segment) {
	for _, s := range w.Shards {
		if s.ID == shardID {
			s.Segments = append(s.Segments, seg)
			return
		}
	}
	w.Shards = append(w.Shards, &Shard{ID: shardID, Segments: []*edgestore.Segment{seg}})
}

// ShardFor returns the shard a node id belongs to, or nil if no such shard
// has been opened.
func (w *Webgraph) ShardFor(node ids.NodeID) *Shard {
	target := ShardOf(node, uint64(len(w.Shards)))
	for _, s := range w.Shards {
		if s.ID == target {
			return s
		}
	}
	return nil
}
