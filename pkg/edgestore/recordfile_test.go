package edgestore

import (
	"path/filepath"
	"testing"

	"github.com/lanterngraph/core/pkg/binformat"
	"github.com/stretchr/testify/require"
)

func TestRecordFileAppendAndReadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bin")
	rf, err := openRecordFile(path, false)
	require.NoError(t, err)
	defer rf.close()

	start1, err := rf.appendRecords([]binformat.DestRecord{{NodeID: 1, SortKey: 10}, {NodeID: 2, SortKey: 20}})
	require.NoError(t, err)
	require.Equal(t, uint64(0), start1)

	start2, err := rf.appendRecords([]binformat.DestRecord{{NodeID: 3, SortKey: 30}})
	require.NoError(t, err)
	require.Equal(t, uint64(2), start2)

	got, err := rf.readRange(0, 3)
	require.NoError(t, err)
	require.Equal(t, []binformat.DestRecord{
		{NodeID: 1, SortKey: 10},
		{NodeID: 2, SortKey: 20},
		{NodeID: 3, SortKey: 30},
	}, got)
}

func TestRecordFileReadRangeWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bin")
	rf, err := openRecordFile(path, false)
	require.NoError(t, err)
	defer rf.close()

	_, err = rf.appendRecords([]binformat.DestRecord{{NodeID: 1}, {NodeID: 2}, {NodeID: 3}})
	require.NoError(t, err)

	got, err := rf.readRange(1, 2)
	require.NoError(t, err)
	require.Equal(t, []binformat.DestRecord{{NodeID: 2}}, got)
}
