// Package binformat implements the fixed little-endian binary layouts the
// persisted artifacts use: 16-byte destination records, node/label byte
// ranges, and the host membership key. These are hand-rolled instead of a
// generic codec because the on-disk formats pin exact byte widths and
// field order that a general-purpose encoder (encoding/gob, encoding/json)
// cannot guarantee; the edge store's O(1) seek depends on every record
// being exactly 16 bytes.
package binformat

import (
	"encoding/binary"
	"math"
)

func float64Bits(v float64) uint64    { return math.Float64bits(v) }
func float64FromBits(b uint64) float64 { return math.Float64frombits(b) }

// DestRecordSize is the fixed size in bytes of one destination record:
// {node_id: u64 LE, sort_key: u64 LE}.
const DestRecordSize = 16

// DestRecord is one packed destination-array entry in an edge-store segment.
type DestRecord struct {
	NodeID  uint64
	SortKey uint64
}

// PutDestRecord encodes r into buf[:16]. buf must have length >= 16.
func PutDestRecord(buf []byte, r DestRecord) {
	binary.LittleEndian.PutUint64(buf[0:8], r.NodeID)
	binary.LittleEndian.PutUint64(buf[8:16], r.SortKey)
}

// GetDestRecord decodes a DestRecord from buf[:16].
func GetDestRecord(buf []byte) DestRecord {
	return DestRecord{
		NodeID:  binary.LittleEndian.Uint64(buf[0:8]),
		SortKey: binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// Range is a half-open byte or record range [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// Len returns the logical length of the range.
func (r Range) Len() uint64 { return r.End - r.Start }

// RangeSize is the fixed encoded size of a Range.
const RangeSize = 16

// PutRange encodes r into buf[:16].
func PutRange(buf []byte, r Range) {
	binary.LittleEndian.PutUint64(buf[0:8], r.Start)
	binary.LittleEndian.PutUint64(buf[8:16], r.End)
}

// GetRange decodes a Range from buf[:16].
func GetRange(buf []byte) Range {
	return Range{
		Start: binary.LittleEndian.Uint64(buf[0:8]),
		End:   binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// NodeRange couples a destination-array range with the representative sort
// key used by downstream scorers that only need the first (highest-rank)
// entry's key without decoding the whole slab.
type NodeRange struct {
	Range    Range
	SortKey  uint64
}

// NodeRangeSize is the fixed encoded size of a NodeRange.
const NodeRangeSize = RangeSize + 8

// PutNodeRange encodes nr into buf[:NodeRangeSize].
func PutNodeRange(buf []byte, nr NodeRange) {
	PutRange(buf[0:RangeSize], nr.Range)
	binary.LittleEndian.PutUint64(buf[RangeSize:RangeSize+8], nr.SortKey)
}

// GetNodeRange decodes a NodeRange from buf[:NodeRangeSize].
func GetNodeRange(buf []byte) NodeRange {
	return NodeRange{
		Range:   GetRange(buf[0:RangeSize]),
		SortKey: binary.LittleEndian.Uint64(buf[RangeSize : RangeSize+8]),
	}
}

// NodeIDKey encodes a u64 node id as an 8-byte little-endian key, matching
// "node_id(u64 LE)" keys used by the centrality stores and edge-store range
// maps.
func NodeIDKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, id)
	return buf
}

// ParseNodeIDKey decodes an 8-byte little-endian node id key.
func ParseNodeIDKey(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

// HostPageKey builds the raw concatenated hosts/ key "host_u64 ∥ page_u64".
func HostPageKey(host, page uint64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], host)
	binary.LittleEndian.PutUint64(buf[8:16], page)
	return buf
}

// ParseHostPageKey decodes a HostPageKey.
func ParseHostPageKey(buf []byte) (host, page uint64) {
	return binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
}

// Float64LE encodes a float64 as 8 little-endian bytes, matching the
// "node_id(u64 LE) → f64 LE" centrality store value layout.
func Float64LE(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, float64Bits(v))
	return buf
}

// ParseFloat64LE decodes a Float64LE-encoded value.
func ParseFloat64LE(buf []byte) float64 {
	return float64FromBits(binary.LittleEndian.Uint64(buf))
}

// Uint64LE encodes v as 8 little-endian bytes.
func Uint64LE(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// ParseUint64LE decodes a Uint64LE-encoded value.
func ParseUint64LE(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}
