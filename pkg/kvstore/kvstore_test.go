package kvstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetSetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set([]byte("k1"), []byte("v1")))

	v, err := s.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(v))
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBatchCommitAppliesAllWrites(t *testing.T) {
	s := openTestStore(t)
	b := s.NewBatch()
	for i := 0; i < 100; i++ {
		b.Put([]byte{byte(i)}, []byte{byte(i * 2)})
	}
	require.NoError(t, b.Commit())

	v, err := s.Get([]byte{42})
	require.NoError(t, err)
	require.Equal(t, []byte{84}, v)
}

func TestScanPrefix(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set([]byte("host:1:page:1"), nil))
	require.NoError(t, s.Set([]byte("host:1:page:2"), nil))
	require.NoError(t, s.Set([]byte("host:2:page:1"), nil))

	var keys []string
	err := s.ScanPrefix([]byte("host:1:"), func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestHasPrefix(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set([]byte("a:1"), nil))

	ok, err := s.HasPrefix([]byte("a:"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.HasPrefix([]byte("b:"))
	require.NoError(t, err)
	require.False(t, ok)
}
