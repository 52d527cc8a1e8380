package edgestore

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelBlockAppendAndReadBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.bin")
	lbf, err := openLabelBlockFile(path)
	require.NoError(t, err)
	defer lbf.close()

	idx, err := lbf.appendBlock([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	got, err := lbf.readBlock(0)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestLabelBlockFlatIndexAddressing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.bin")
	lbf, err := openLabelBlockFile(path)
	require.NoError(t, err)
	defer lbf.close()

	block0 := make([]string, labelsPerBlock)
	for i := range block0 {
		block0[i] = fmt.Sprintf("b0-%d", i)
	}
	_, err = lbf.appendBlock(block0)
	require.NoError(t, err)

	_, err = lbf.appendBlock([]string{"b1-0", "b1-1"})
	require.NoError(t, err)

	label, err := lbf.labelAt(labelsPerBlock + 1)
	require.NoError(t, err)
	require.Equal(t, "b1-1", label)
}

func TestLabelBlockReopenRebuildsOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.bin")
	lbf, err := openLabelBlockFile(path)
	require.NoError(t, err)

	_, err = lbf.appendBlock([]string{"one"})
	require.NoError(t, err)
	_, err = lbf.appendBlock([]string{"two", "three"})
	require.NoError(t, err)
	require.NoError(t, lbf.close())

	reopened, err := openLabelBlockFile(path)
	require.NoError(t, err)
	defer reopened.close()
	require.Len(t, reopened.offsets, 2)

	got, err := reopened.readBlock(1)
	require.NoError(t, err)
	require.Equal(t, []string{"two", "three"}, got)
}
