package driving

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// SyncEngine keeps the search index consistent with the graph API.
// Calls are not safe to interleave; callers serialise them.
type SyncEngine interface {
	// InitIndex creates the index and runs a full reindex if it is missing.
	// With deleteExisting all documents are removed first.
	InitIndex(ctx context.Context, deleteExisting bool) error

	// FullReindex rebuilds the documents of every graph.
	FullReindex(ctx context.Context) error

	// ReindexGraph rebuilds the documents of one graph.
	ReindexGraph(ctx context.Context, graphID domain.GraphID, waitForRefresh bool) error

	// OnSaved updates the index after nodes of one graph were saved.
	OnSaved(ctx context.Context, affected domain.AffectedNodes) error

	// OnDeleted updates the index after nodes of one graph were deleted.
	OnDeleted(ctx context.Context, affected domain.AffectedNodes) error

	// Status returns the current and last run.
	Status() domain.SyncStatus

	// History returns recent runs, newest first.
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

// ChangeDispatcher is the single serialisation point in front of SyncEngine.
type ChangeDispatcher interface {
	// Dispatch groups a change event by graph and applies each group in turn.
	Dispatch(ctx context.Context, event domain.ChangeEvent) error

	// InitIndex runs SyncEngine.InitIndex under the dispatcher lock.
	InitIndex(ctx context.Context, deleteExisting bool) error

	// FullReindex runs SyncEngine.FullReindex under the dispatcher lock.
	FullReindex(ctx context.Context) error

	// ReindexGraph runs SyncEngine.ReindexGraph under the dispatcher lock.
	ReindexGraph(ctx context.Context, graphID domain.GraphID) error

	// Handle executes a queued job.
	Handle(ctx context.Context, job domain.Job) error
}

// NotificationQueue accepts jobs for the single sync worker.
type NotificationQueue interface {
	// Submit enqueues a job, blocking while the queue is full.
	// Returns domain.ErrQueueClosed once the worker has stopped.
	Submit(ctx context.Context, job domain.Job) error

	// Len returns the number of queued jobs.
	Len() int
}
