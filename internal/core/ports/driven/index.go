package driven

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// IndexDefinition is the index settings and mapping, as backend JSON.
type IndexDefinition struct {
	Settings []byte
	Mapping  []byte
}

// IndexGateway is the engine's only view of the search index.
//
// Write failures reported by the backend are logged and do not return an
// error. Transport failures wrap domain.ErrIndexUnavailable.
type IndexGateway interface {
	// Exists reports whether the index exists.
	Exists(ctx context.Context) (bool, error)

	// CreateIndex creates the index with the definition's settings.
	CreateIndex(ctx context.Context, def IndexDefinition) error

	// CreateMapping applies the definition's mapping to the index.
	CreateMapping(ctx context.Context, def IndexDefinition) error

	// BulkUpsertAndDelete writes upserts and deletes in one bulk request.
	// With both lists empty it does nothing. waitForRefresh blocks until
	// the writes are visible to reads.
	BulkUpsertAndDelete(ctx context.Context, upserts []domain.Concept, deletes []domain.DocumentKey, waitForRefresh bool) (BulkResult, error)

	// DeleteByGraphID removes every document of a graph.
	DeleteByGraphID(ctx context.Context, graphID domain.GraphID) error

	// DeleteAll removes every document in the index.
	DeleteAll(ctx context.Context) error

	// GetDocument reads a previously indexed document.
	// Returns nil if it does not exist.
	GetDocument(ctx context.Context, key domain.DocumentKey) (*domain.IndexDocument, error)
}

// BulkResult reports what a bulk write attempted and whether the backend
// accepted it.
type BulkResult struct {
	Upserts int
	Deletes int
	Failed  bool
}
