package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Verify interface compliance.
var _ driven.IndexGateway = (*Gateway)(nil)

// maxErrorBody caps how much of an error response is logged.
const maxErrorBody = 1024

// Gateway reads and writes concept documents in one Elasticsearch index.
type Gateway struct {
	es   *elasticsearch.Client
	name string
}

// NewGateway creates a gateway for the configured index.
// transport may be nil to use the default HTTP transport.
func NewGateway(cfg domain.IndexSettings, transport http.RoundTripper) (*Gateway, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: index name is empty", domain.ErrInvalidInput)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch client: %w", domain.ErrInvalidInput, err)
	}
	return &Gateway{es: es, name: cfg.Name}, nil
}

// Name returns the index name.
func (g *Gateway) Name() string {
	return g.name
}

// Exists reports whether the index exists.
func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	res, err := g.es.Indices.Exists([]string{g.name}, g.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, unavailable("exists", err)
	}
	defer drain(res)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, requestFailed("exists", res)
	}
}

// CreateIndex creates the index with the definition's settings.
func (g *Gateway) CreateIndex(ctx context.Context, def driven.IndexDefinition) error {
	body, err := json.Marshal(map[string]json.RawMessage{"settings": def.Settings})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	res, err := g.es.Indices.Create(g.name,
		g.es.Indices.Create.WithContext(ctx),
		g.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return unavailable("create index", err)
	}
	defer drain(res)

	if res.IsError() {
		return requestFailed("create index", res)
	}
	logger.Info("Created index %s", g.name)
	return nil
}

// CreateMapping applies the definition's mapping.
func (g *Gateway) CreateMapping(ctx context.Context, def driven.IndexDefinition) error {
	res, err := g.es.Indices.PutMapping([]string{g.name}, bytes.NewReader(def.Mapping),
		g.es.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return unavailable("put mapping", err)
	}
	defer drain(res)

	if res.IsError() {
		return requestFailed("put mapping", res)
	}
	return nil
}

// BulkUpsertAndDelete writes upserts and deletes in one bulk request.
// Backend rejections are logged and reported through BulkResult.Failed.
// Delete keys that are not "<graphId>/<conceptId>" are dropped with a warning.
func (g *Gateway) BulkUpsertAndDelete(
	ctx context.Context,
	upserts []domain.Concept,
	deletes []domain.DocumentKey,
	waitForRefresh bool,
) (driven.BulkResult, error) {
	deletes = validDeleteKeys(deletes)
	result := driven.BulkResult{Upserts: len(upserts), Deletes: len(deletes)}
	if len(upserts) == 0 && len(deletes) == 0 {
		return result, nil
	}

	body, err := encodeBulk(g.name, upserts, deletes)
	if err != nil {
		return result, fmt.Errorf("encode bulk: %w", err)
	}

	opts := []func(*esapi.BulkRequest){
		g.es.Bulk.WithContext(ctx),
		g.es.Bulk.WithIndex(g.name),
	}
	if waitForRefresh {
		opts = append(opts, g.es.Bulk.WithRefresh("wait_for"))
	}

	res, err := g.es.Bulk(bytes.NewReader(body), opts...)
	if err != nil {
		return result, unavailable("bulk", err)
	}
	defer drain(res)

	if res.IsError() {
		logger.Error("Bulk request to %s with %d upserts and %d deletes failed: %s",
			g.name, len(upserts), len(deletes), errorBody(res))
		result.Failed = true
		return result, nil
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		logger.Error("Decode bulk response from %s for %d upserts and %d deletes: %v",
			g.name, len(upserts), len(deletes), err)
		result.Failed = true
		return result, nil
	}
	if failures := parsed.failures(); len(failures) > 0 {
		logger.Error("Bulk request to %s rejected %d of %d items: %s",
			g.name, len(failures), len(upserts)+len(deletes), strings.Join(failures, "; "))
		result.Failed = true
	}
	return result, nil
}

// DeleteByGraphID removes every document whose vocabulary id is graphID.
func (g *Gateway) DeleteByGraphID(ctx context.Context, graphID domain.GraphID) error {
	return g.deleteByQuery(ctx, map[string]any{
		"term": map[string]any{"vocabulary.id": string(graphID)},
	})
}

// DeleteAll removes every document. The index itself is kept.
func (g *Gateway) DeleteAll(ctx context.Context) error {
	return g.deleteByQuery(ctx, map[string]any{"match_all": map[string]any{}})
}

func (g *Gateway) deleteByQuery(ctx context.Context, query map[string]any) error {
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	res, err := g.es.DeleteByQuery([]string{g.name}, bytes.NewReader(body),
		g.es.DeleteByQuery.WithContext(ctx),
		g.es.DeleteByQuery.WithConflicts("proceed"),
		g.es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return unavailable("delete by query", err)
	}
	defer drain(res)

	if res.IsError() {
		logger.Error("Delete by query on %s failed: %s", g.name, errorBody(res))
		return nil
	}

	var parsed struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err == nil {
		logger.Debug("Deleted %d documents from %s", parsed.Deleted, g.name)
	}
	return nil
}

// GetDocument reads one indexed document. Returns nil if it does not exist.
func (g *Gateway) GetDocument(ctx context.Context, key domain.DocumentKey) (*domain.IndexDocument, error) {
	body, err := json.Marshal(map[string][]string{"ids": {key.String()}})
	if err != nil {
		return nil, fmt.Errorf("encode ids: %w", err)
	}

	res, err := g.es.Mget(bytes.NewReader(body),
		g.es.Mget.WithContext(ctx),
		g.es.Mget.WithIndex(g.name),
	)
	if err != nil {
		return nil, unavailable("get document", err)
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, requestFailed("get document", res)
	}

	var parsed mgetResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode document %s: %w", domain.ErrIndexRequestFailed, key, err)
	}
	for _, doc := range parsed.Docs {
		if doc.ID == key.String() && doc.Found && doc.Source != nil {
			return doc.Source, nil
		}
	}
	return nil, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrIndexUnavailable, op, err)
}

func requestFailed(op string, res *esapi.Response) error {
	return fmt.Errorf("%w: %s: %s: %s", domain.ErrIndexRequestFailed, op, res.Status(), errorBody(res))
}

func errorBody(res *esapi.Response) string {
	if res.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	return strings.TrimSpace(string(b))
}

// drain consumes and closes the body so the connection can be reused.
func drain(res *esapi.Response) {
	if res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
