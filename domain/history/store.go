package history

import (
	"context"
	"time"
)

// Store persists history records.
// This is a repository interface - implementations are in infrastructure.
type Store interface {
	// Append persists a record.
	Append(ctx context.Context, rec *Record) error

	// List returns records matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*Record, error)

	// Prune removes records older than the given time and reports how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases backend resources.
	Close() error
}
