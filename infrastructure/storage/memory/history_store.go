package memory

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/history"
)

// HistoryStore is an in-memory implementation of history.Store.
// Records are kept in append order; List walks them backwards so the
// newest come first.
type HistoryStore struct {
	records    []*history.Record
	maxRecords int
	mu         sync.RWMutex
	closed     bool
}

// HistoryOption configures the store.
type HistoryOption func(*HistoryStore)

// WithMaxRecords caps the number of retained records. When the cap is
// reached the oldest records are dropped. Zero means unlimited.
func WithMaxRecords(n int) HistoryOption {
	return func(s *HistoryStore) {
		s.maxRecords = n
	}
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore(opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append persists a record.
func (s *HistoryStore) Append(ctx context.Context, rec *history.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if rec == nil || rec.ID == "" {
		return history.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	// Store a copy so callers cannot mutate persisted records.
	recCopy := *rec
	s.records = append(s.records, &recCopy)

	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		excess := len(s.records) - s.maxRecords
		s.records = append([]*history.Record(nil), s.records[excess:]...)
	}
	return nil
}

// List returns records matching the filter, newest first.
func (s *HistoryStore) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}

	var out []*history.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if !filter.Matches(rec) {
			continue
		}
		recCopy := *rec
		out = append(out, &recCopy)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Prune removes records older than the given time.
func (s *HistoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, history.ErrStoreClosed
	}

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.Time.Before(before) {
			continue
		}
		kept = append(kept, rec)
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed, nil
}

// Size returns the current number of records.
func (s *HistoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close rejects further operations.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure HistoryStore implements history.Store
var _ history.Store = (*HistoryStore)(nil)
