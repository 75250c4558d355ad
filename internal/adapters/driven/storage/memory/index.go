package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
)

// Ensure IndexGateway implements the interface.
var _ driven.IndexGateway = (*IndexGateway)(nil)

// IndexGateway is an in-memory implementation of driven.IndexGateway.
// Documents are stored as the JSON the real index would receive, so reads
// go through the same encoding as production.
type IndexGateway struct {
	mu         sync.RWMutex
	exists     bool
	definition driven.IndexDefinition
	docs       map[domain.DocumentKey][]byte
	calls      IndexCalls
	refreshes  []bool
}

// IndexCalls counts calls per operation.
type IndexCalls struct {
	Exists          int
	CreateIndex     int
	CreateMapping   int
	Bulk            int
	DeleteByGraphID int
	DeleteAll       int
	GetDocument     int
}

// NewIndexGateway creates an empty, not yet created index.
func NewIndexGateway() *IndexGateway {
	return &IndexGateway{
		docs: make(map[domain.DocumentKey][]byte),
	}
}

// Exists reports whether CreateIndex has been called.
func (g *IndexGateway) Exists(_ context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.Exists++
	return g.exists, nil
}

// CreateIndex marks the index as created.
func (g *IndexGateway) CreateIndex(_ context.Context, def driven.IndexDefinition) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.CreateIndex++
	g.exists = true
	g.definition = def
	return nil
}

// CreateMapping records the mapping.
func (g *IndexGateway) CreateMapping(_ context.Context, def driven.IndexDefinition) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.CreateMapping++
	if !g.exists {
		return fmt.Errorf("%w: index does not exist", domain.ErrIndexRequestFailed)
	}
	g.definition.Mapping = def.Mapping
	return nil
}

// BulkUpsertAndDelete applies upserts, then deletes.
func (g *IndexGateway) BulkUpsertAndDelete(_ context.Context, upserts []domain.Concept, deletes []domain.DocumentKey, waitForRefresh bool) (driven.BulkResult, error) {
	if len(upserts) == 0 && len(deletes) == 0 {
		return driven.BulkResult{}, nil
	}

	encoded := make(map[domain.DocumentKey][]byte, len(upserts))
	for _, c := range upserts {
		data, err := json.Marshal(c.ToIndexDocument())
		if err != nil {
			return driven.BulkResult{}, fmt.Errorf("encode %s: %w", c.Key(), err)
		}
		encoded[c.Key()] = data
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.Bulk++
	g.refreshes = append(g.refreshes, waitForRefresh)
	for key, data := range encoded {
		g.docs[key] = data
	}
	for _, key := range deletes {
		delete(g.docs, key)
	}
	return driven.BulkResult{Upserts: len(upserts), Deletes: len(deletes)}, nil
}

// DeleteByGraphID removes the documents whose vocabulary id is graphID.
func (g *IndexGateway) DeleteByGraphID(_ context.Context, graphID domain.GraphID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.DeleteByGraphID++
	for key, data := range g.docs {
		var doc domain.IndexDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if doc.Vocabulary.ID == string(graphID) {
			delete(g.docs, key)
		}
	}
	return nil
}

// DeleteAll removes every document.
func (g *IndexGateway) DeleteAll(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls.DeleteAll++
	g.docs = make(map[domain.DocumentKey][]byte)
	return nil
}

// GetDocument decodes a stored document. Returns nil if it does not exist.
func (g *IndexGateway) GetDocument(_ context.Context, key domain.DocumentKey) (*domain.IndexDocument, error) {
	g.mu.Lock()
	g.calls.GetDocument++
	data, ok := g.docs[key]
	g.mu.Unlock()

	if !ok {
		return nil, nil
	}
	var doc domain.IndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &doc, nil
}

// Put stores a document directly, bypassing the bulk path.
func (g *IndexGateway) Put(c domain.Concept) error {
	data, err := json.Marshal(c.ToIndexDocument())
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs[c.Key()] = data
	return nil
}

// Raw returns the stored JSON of a document.
func (g *IndexGateway) Raw(key domain.DocumentKey) ([]byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	data, ok := g.docs[key]
	return append([]byte(nil), data...), ok
}

// Keys returns the stored document keys in sorted order.
func (g *IndexGateway) Keys() []domain.DocumentKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]domain.DocumentKey, 0, len(g.docs))
	for k := range g.docs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Calls returns the call counters.
func (g *IndexGateway) Calls() IndexCalls {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.calls
}

// Refreshes returns the waitForRefresh flag of each bulk call, in order.
func (g *IndexGateway) Refreshes() []bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]bool(nil), g.refreshes...)
}

// Definition returns the definition the index was created with.
func (g *IndexGateway) Definition() driven.IndexDefinition {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.definition
}
