package termed

import (
	"context"
	"net/url"
	"sort"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Verify interface compliance.
var _ driven.SourceGateway = (*Gateway)(nil)

// Gateway reads graphs, vocabularies and concepts from the graph API.
type Gateway struct {
	client *Client
}

// NewGateway creates a gateway over client.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

// ListGraphIDs returns the ids of all graphs.
func (g *Gateway) ListGraphIDs(ctx context.Context) ([]domain.GraphID, error) {
	var graphs []graphRef
	if err := g.client.getJSON(ctx, pathGraphs, nil, &graphs); err != nil {
		if isSoftFailure(err) {
			logger.Warn("List graphs: %v%s", err, failureHint(err))
			return []domain.GraphID{}, nil
		}
		return nil, err
	}

	ids := make([]domain.GraphID, 0, len(graphs))
	for _, gr := range graphs {
		if gr.ID != "" {
			ids = append(ids, domain.GraphID(gr.ID))
		}
	}
	return ids, nil
}

// FetchGraphSnapshot returns every node of a graph.
// An API error yields an empty snapshot.
func (g *Gateway) FetchGraphSnapshot(ctx context.Context, graphID domain.GraphID) (*domain.GraphSnapshot, error) {
	trees, err := g.nodeTrees(ctx, nodeTreeQuery(selectSnapshot, whereGraph(graphID)))
	if err != nil {
		if isSoftFailure(err) {
			logger.Warn("Fetch graph %s: %v%s", graphID, err, failureHint(err))
			return domain.NewGraphSnapshot(graphID, nil), nil
		}
		return nil, err
	}

	return domain.NewGraphSnapshot(graphID, toRawNodes(trees)), nil
}

// FetchVocabulary probes each vocabulary type in order and returns the first
// match. When several nodes of one type exist the smallest id wins.
func (g *Gateway) FetchVocabulary(ctx context.Context, graphID domain.GraphID) (*domain.RawNode, error) {
	for _, typeID := range domain.VocabularyTypes {
		trees, err := g.nodeTrees(ctx, nodeTreeQuery(selectVocabulary, whereGraphAndType(graphID, typeID)))
		if err != nil {
			if isSoftFailure(err) {
				logger.Warn("Fetch %s of graph %s: %v%s", typeID, graphID, err, failureHint(err))
				continue
			}
			return nil, err
		}
		if len(trees) == 0 {
			continue
		}

		sort.Slice(trees, func(i, j int) bool { return trees[i].ID < trees[j].ID })
		node := trees[0].toRawNode()
		return &node, nil
	}
	return nil, nil
}

// FetchConcepts returns the given concepts with labels expanded.
// Large id sets are fetched in batches.
func (g *Gateway) FetchConcepts(ctx context.Context, graphID domain.GraphID, ids []domain.NodeID) ([]domain.RawNode, error) {
	if len(ids) == 0 {
		return []domain.RawNode{}, nil
	}

	nodes := make([]domain.RawNode, 0, len(ids))
	for _, batch := range chunkIDs(ids, maxIDsPerQuery) {
		trees, err := g.nodeTrees(ctx, nodeTreeQuery(selectConcepts, whereGraphAndIDs(graphID, batch)))
		if err != nil {
			if isSoftFailure(err) {
				logger.Warn("Fetch %d concepts of graph %s: %v%s", len(batch), graphID, err, failureHint(err))
				continue
			}
			return nil, err
		}
		nodes = append(nodes, toRawNodes(trees)...)
	}
	return nodes, nil
}

func (g *Gateway) nodeTrees(ctx context.Context, query url.Values) ([]nodeTree, error) {
	var trees []nodeTree
	if err := g.client.getJSON(ctx, pathNodeTrees, query, &trees); err != nil {
		return nil, err
	}
	return trees, nil
}
