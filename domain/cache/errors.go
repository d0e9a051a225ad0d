package cache

import "errors"

var (
	// ErrCacheClosed indicates an operation on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")

	// ErrInvalidKey indicates an empty or malformed cache key.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrCacheFull indicates the cache cannot accept more entries.
	ErrCacheFull = errors.New("cache is full")

	// ErrConnectionFailed indicates the cache backend is unreachable.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout indicates a cache operation exceeded its deadline.
	ErrOperationTimeout = errors.New("cache operation timed out")
)
