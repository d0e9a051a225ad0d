package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/checkwise/domain/history"
)

// HistoryStore is a BadgerDB-backed implementation of history.Store.
//
// Keys embed the record time as a big-endian nanosecond timestamp so
// that lexicographic key order equals chronological order. List walks
// the keyspace in reverse for newest-first results, and Prune deletes
// a contiguous key range.
type HistoryStore struct {
	db        *badger.DB
	keyPrefix string
	gcStop    chan struct{}
	gcWg      sync.WaitGroup
	closeOnce sync.Once
}

// NewHistoryStore creates a new BadgerDB history store.
func NewHistoryStore(cfg Config, opts ...Option) (*HistoryStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &HistoryStore{
		db:        db,
		keyPrefix: cfg.KeyPrefix,
		gcStop:    make(chan struct{}),
	}

	if cfg.GCInterval > 0 {
		s.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}

	return s, nil
}

// NewHistoryStoreFromDB creates a history store from an existing database.
func NewHistoryStoreFromDB(db *badger.DB, keyPrefix string) *HistoryStore {
	return &HistoryStore{
		db:        db,
		keyPrefix: keyPrefix,
		gcStop:    make(chan struct{}),
	}
}

// startGC starts the value log garbage collection goroutine.
func (s *HistoryStore) startGC(interval time.Duration, discardRatio float64) {
	s.gcWg.Add(1)
	go func() {
		defer s.gcWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.gcStop:
				return
			case <-ticker.C:
				for {
					err := s.db.RunValueLogGC(discardRatio)
					if err != nil {
						break
					}
				}
			}
		}
	}()
}

// recordPrefix is the common prefix of all record keys.
func (s *HistoryStore) recordPrefix() []byte {
	return []byte(s.keyPrefix + "history:")
}

// recordKey builds a key ordered by time: prefix + 8-byte big-endian
// nanosecond timestamp + ":" + record ID. The ID suffix keeps records
// written in the same nanosecond distinct.
func (s *HistoryStore) recordKey(rec *history.Record) []byte {
	prefix := s.recordPrefix()
	key := make([]byte, 0, len(prefix)+8+1+len(rec.ID))
	key = append(key, prefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(rec.Time.UnixNano()))
	key = append(key, ':')
	return append(key, rec.ID...)
}

// Append persists a record.
func (s *HistoryStore) Append(ctx context.Context, rec *history.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if rec == nil || rec.ID == "" {
		return history.ErrInvalidRecord
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.recordKey(rec), data)
	})
}

// List returns records matching the filter, newest first.
func (s *HistoryStore) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := s.recordPrefix()
	var records []*history.Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks past the last key in the range.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.Valid(); it.Next() {
			var rec history.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue // Skip malformed entries
			}

			if !filter.Matches(&rec) {
				continue
			}

			recCopy := rec
			records = append(records, &recCopy)
			if filter.Limit > 0 && len(records) >= filter.Limit {
				break
			}
		}

		return nil
	})

	return records, err
}

// Prune removes records older than the given time.
func (s *HistoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Record times are never before 1970; a non-positive cutoff
	// matches nothing.
	cutoff := before.UnixNano()
	if cutoff <= 0 {
		return 0, nil
	}

	prefix := s.recordPrefix()
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			ts := binary.BigEndian.Uint64(key[len(prefix) : len(prefix)+8])
			// Keys are time ordered, so the first young record ends
			// the scan.
			if ts >= uint64(cutoff) {
				break
			}
			keys = append(keys, it.Item().KeyCopy(nil))
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	// WriteBatch splits the deletes across transactions as needed.
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	return len(keys), nil
}

// Count returns the number of stored records.
func (s *HistoryStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.recordPrefix()

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}

		return nil
	})

	return count, err
}

// Close stops GC and closes the database.
func (s *HistoryStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.gcStop)
		s.gcWg.Wait()
		err = s.db.Close()
	})
	return err
}

// DB returns the underlying BadgerDB database.
func (s *HistoryStore) DB() *badger.DB {
	return s.db
}

// Ensure HistoryStore implements history.Store
var _ history.Store = (*HistoryStore)(nil)
