package history

import "errors"

// Domain errors for the history system.
var (
	// ErrRecordNotFound indicates the requested record was not found.
	ErrRecordNotFound = errors.New("history record not found")

	// ErrInvalidRecord indicates a nil or incomplete record.
	ErrInvalidRecord = errors.New("invalid history record")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("history store is closed")

	// ErrConnectionFailed indicates the storage backend is unreachable.
	ErrConnectionFailed = errors.New("history store connection failed")

	// ErrOperationTimeout indicates a storage operation exceeded its deadline.
	ErrOperationTimeout = errors.New("history store operation timed out")
)
