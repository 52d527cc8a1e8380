package edgestore

import (
	"fmt"
	"os"

	"github.com/lanterngraph/core/pkg/binformat"
)

// recordFile is an append-only, fixed-record-size file giving O(1) seek by
// record index: the nodes file of a direction index, 16 bytes per record.
type recordFile struct {
	f *os.File
}

func openRecordFile(path string, readOnly bool) (*recordFile, error) {
	flag := os.O_RDWR | os.O_CREATE
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("edgestore: open record file %s: %w", path, err)
	}
	return &recordFile{f: f}, nil
}

func (r *recordFile) close() error { return r.f.Close() }

// appendRecords appends records contiguously, returning the starting record
// index of the appended run.
func (r *recordFile) appendRecords(records []binformat.DestRecord) (startIdx uint64, err error) {
	info, err := r.f.Stat()
	if err != nil {
		return 0, err
	}
	startIdx = uint64(info.Size()) / binformat.DestRecordSize

	buf := make([]byte, len(records)*binformat.DestRecordSize)
	for i, rec := range records {
		binformat.PutDestRecord(buf[i*binformat.DestRecordSize:], rec)
	}
	if _, err := r.f.Write(buf); err != nil {
		return 0, fmt.Errorf("edgestore: write records: %w", err)
	}
	return startIdx, nil
}

// readRange reads the [start,end) record window.
func (r *recordFile) readRange(start, end uint64) ([]binformat.DestRecord, error) {
	if end < start {
		return nil, fmt.Errorf("edgestore: corrupt range [%d,%d)", start, end)
	}
	n := end - start
	buf := make([]byte, n*binformat.DestRecordSize)
	if n > 0 {
		if _, err := r.f.ReadAt(buf, int64(start*binformat.DestRecordSize)); err != nil {
			return nil, fmt.Errorf("edgestore: read records [%d,%d): %w", start, end, err)
		}
	}
	out := make([]binformat.DestRecord, n)
	for i := range out {
		out[i] = binformat.GetDestRecord(buf[i*binformat.DestRecordSize:])
	}
	return out, nil
}
