// Package kvstore wraps BadgerDB with the small set of operations every
// durable artifact in this module needs: point get/set, prefix scans, and
// batched writes. It generalizes the open/close and tuning logic a
// property-graph engine would use for its own storage layer into a
// key/value primitive shared by the edge store's range and host maps and
// the centrality stores — each of those owns its own Store pointed at its
// own on-disk directory rather than sharing a single keyspace.
package kvstore

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Options configures a Store.
type Options struct {
	// DataDir is the directory BadgerDB should use. Required unless
	// InMemory is set.
	DataDir string

	// InMemory runs BadgerDB with no on-disk footprint, for tests.
	InMemory bool

	// SyncWrites forces fsync after every commit. Used by writers whose
	// durability matters more than throughput (edge-store finalize).
	SyncWrites bool

	// ReadOnly opens an existing store without taking the write lock,
	// used by query-serving processes that only ever read a snapshot.
	ReadOnly bool
}

// Store is a thin, general-purpose wrapper around a *badger.DB.
type Store struct {
	db *badger.DB
}

// Open opens or creates a Store at opts.DataDir.
func Open(opts Options) (*Store, error) {
	bo := badger.DefaultOptions(opts.DataDir)
	bo = bo.WithLogger(nil) // ambient logging goes through the caller's *log.Logger, not badger's

	if opts.InMemory {
		bo = bo.WithInMemory(true)
	}
	if opts.SyncWrites {
		bo = bo.WithSyncWrites(true)
	}
	if opts.ReadOnly {
		bo = bo.WithReadOnly(true)
	}

	// Conservative defaults sized for read-mostly graph artifacts rather
	// than a general-purpose transactional workload, matching the
	// teacher's own low-memory tuning block.
	bo = bo.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(512).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", opts.DataDir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored for key, or ErrNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set writes key→value in its own transaction.
func (s *Store) Set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Batch is a set of pending key/value writes applied by Commit.
type Batch struct {
	store *Store
	pairs []kv
}

type kv struct {
	key, value []byte
}

// NewBatch returns an empty Batch bound to s.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

// Put stages a write. Batched writes are not visible until Commit.
func (b *Batch) Put(key, value []byte) {
	b.pairs = append(b.pairs, kv{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

// Len reports the number of pending writes.
func (b *Batch) Len() int { return len(b.pairs) }

// Commit applies the staged writes in consecutive BadgerDB transactions of
// at most 50,000 writes each; only a batch of that size or smaller is
// applied in a single transaction.
func (b *Batch) Commit() error {
	const maxPerTxn = 50000
	for start := 0; start < len(b.pairs); start += maxPerTxn {
		end := start + maxPerTxn
		if end > len(b.pairs) {
			end = len(b.pairs)
		}
		chunk := b.pairs[start:end]
		err := b.store.db.Update(func(txn *badger.Txn) error {
			for _, p := range chunk {
				if err := txn.Set(p.key, p.value); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("kvstore: commit batch [%d:%d]: %w", start, end, err)
		}
	}
	b.pairs = b.pairs[:0]
	return nil
}

// ScanPrefix calls fn for every key with the given prefix, in key order,
// stopping early (without error) if fn returns ErrStopIteration.
func (s *Store) ScanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := append([]byte(nil), item.Key()...)
			var stop bool
			err := item.Value(func(val []byte) error {
				cbErr := fn(key, val)
				if cbErr == ErrStopIteration {
					stop = true
					return nil
				}
				return cbErr
			})
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return nil
	})
}

// CountPrefix returns the number of keys with the given prefix.
func (s *Store) CountPrefix(prefix []byte) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// HasPrefix reports whether any key starts with prefix.
func (s *Store) HasPrefix(prefix []byte) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	return found, err
}

// KeysEqual reports whether a and b are byte-identical, a small helper kept
// here so callers comparing composite keys don't each re-import "bytes".
func KeysEqual(a, b []byte) bool { return bytes.Equal(a, b) }
