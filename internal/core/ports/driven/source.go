package driven

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// SourceGateway is the engine's only view of the graph API.
//
// Transport failures are returned wrapped in domain.ErrSourceUnavailable and
// abort the calling run. HTTP error responses are logged by the implementation
// and reported as an empty result instead.
type SourceGateway interface {
	// ListGraphIDs returns the ids of all graphs.
	ListGraphIDs(ctx context.Context) ([]domain.GraphID, error)

	// FetchGraphSnapshot returns every node of a graph, with references.
	FetchGraphSnapshot(ctx context.Context, graphID domain.GraphID) (*domain.GraphSnapshot, error)

	// FetchVocabulary returns the graph's vocabulary node, trying each of
	// domain.VocabularyTypes in order. Returns nil if none is found.
	FetchVocabulary(ctx context.Context, graphID domain.GraphID) (*domain.RawNode, error)

	// FetchConcepts returns the given concepts with their term labels expanded
	// inline and both broader references and referrers included.
	// Returns an empty result without a request when ids is empty.
	FetchConcepts(ctx context.Context, graphID domain.GraphID, ids []domain.NodeID) ([]domain.RawNode, error)
}
