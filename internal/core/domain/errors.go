package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates the graph API could not be reached.
	// It is fatal to the synchronisation run in progress.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrIndexUnavailable indicates the search index could not be reached.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrIndexRequestFailed indicates the search index rejected a request
	// that must succeed, such as index or mapping creation.
	ErrIndexRequestFailed = errors.New("index request failed")

	// ErrQueueClosed indicates the notification queue no longer accepts jobs.
	ErrQueueClosed = errors.New("queue closed")
)
