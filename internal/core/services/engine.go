package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/documents"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/metrics"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncEngine = (*SyncEngine)(nil)

// SyncEngine decides between full and incremental index updates and repairs
// the broader/narrower links of neighbouring concepts.
//
// It holds no index state between calls. Callers serialise calls; the
// ChangeDispatcher does this for all production entry points.
type SyncEngine struct {
	source     driven.SourceGateway
	index      driven.IndexGateway
	runs       driven.SyncRunStore
	definition driven.IndexDefinition

	incrementalLimit int
	now              func() time.Time

	mu      sync.RWMutex
	current *domain.SyncRun
	last    *domain.SyncRun
}

// EngineOption configures a SyncEngine.
type EngineOption func(*SyncEngine)

// WithIncrementalLimit sets the largest concept batch patched incrementally.
func WithIncrementalLimit(n int) EngineOption {
	return func(e *SyncEngine) {
		e.incrementalLimit = n
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *SyncEngine) {
		e.now = now
	}
}

// NewSyncEngine creates a sync engine.
// runs is optional; without it run history is not persisted.
func NewSyncEngine(
	source driven.SourceGateway,
	index driven.IndexGateway,
	runs driven.SyncRunStore,
	definition driven.IndexDefinition,
	opts ...EngineOption,
) *SyncEngine {
	e := &SyncEngine{
		source:           source,
		index:            index,
		runs:             runs,
		definition:       definition,
		incrementalLimit: domain.DefaultIncrementalLimit,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitIndex creates the index when it is missing and fills it.
// With deleteExisting every document is removed first and the index is
// refilled even though it already exists.
func (e *SyncEngine) InitIndex(ctx context.Context, deleteExisting bool) error {
	return e.track(ctx, domain.SyncKindInit, "", func(run *domain.SyncRun) error {
		if deleteExisting {
			logger.Info("Deleting all documents from the index")
			if err := e.index.DeleteAll(ctx); err != nil {
				return fmt.Errorf("delete all documents: %w", err)
			}
		}

		exists, err := e.index.Exists(ctx)
		if err != nil {
			return fmt.Errorf("check index: %w", err)
		}
		if exists {
			if !deleteExisting {
				logger.Info("Index exists, nothing to initialise")
				return nil
			}
			return e.fullReindex(ctx, run)
		}

		logger.Info("Creating index")
		if err := e.index.CreateIndex(ctx, e.definition); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		if err := e.index.CreateMapping(ctx, e.definition); err != nil {
			return fmt.Errorf("create mapping: %w", err)
		}
		return e.fullReindex(ctx, run)
	})
}

// FullReindex rebuilds every graph without waiting for refresh.
func (e *SyncEngine) FullReindex(ctx context.Context) error {
	return e.track(ctx, domain.SyncKindFull, "", func(run *domain.SyncRun) error {
		return e.fullReindex(ctx, run)
	})
}

// ReindexGraph rebuilds the documents of one graph from a fresh snapshot.
func (e *SyncEngine) ReindexGraph(ctx context.Context, graphID domain.GraphID, waitForRefresh bool) error {
	return e.track(ctx, domain.SyncKindGraph, graphID, func(run *domain.SyncRun) error {
		return e.reindexGraph(ctx, run, graphID, waitForRefresh)
	})
}

// OnSaved refreshes saved concepts and their broader/narrower neighbours.
// A changed vocabulary or a batch above the incremental limit rebuilds the
// whole graph instead.
func (e *SyncEngine) OnSaved(ctx context.Context, affected domain.AffectedNodes) error {
	return e.track(ctx, domain.SyncKindSaved, affected.GraphID, func(run *domain.SyncRun) error {
		if affected.HasVocabulary() || len(affected.ConceptIDs) > e.incrementalLimit {
			logger.Info("Rebuilding graph %s after save (%d vocabulary, %d concept ids)",
				affected.GraphID, len(affected.VocabularyIDs), len(affected.ConceptIDs))
			return e.reindexGraph(ctx, run, affected.GraphID, true)
		}
		if len(affected.ConceptIDs) == 0 {
			return nil
		}
		return e.onSavedIncremental(ctx, run, affected)
	})
}

// OnDeleted removes deleted concepts and refreshes their neighbours.
// A deleted vocabulary removes every document of the graph.
func (e *SyncEngine) OnDeleted(ctx context.Context, affected domain.AffectedNodes) error {
	return e.track(ctx, domain.SyncKindDeleted, affected.GraphID, func(run *domain.SyncRun) error {
		if affected.HasVocabulary() {
			logger.Info("Vocabulary of graph %s deleted, removing its documents", affected.GraphID)
			if err := e.index.DeleteByGraphID(ctx, affected.GraphID); err != nil {
				e.recordFailure(run)
				logger.Error("delete documents of graph %s: %v", affected.GraphID, err)
			}
			return nil
		}
		if len(affected.ConceptIDs) == 0 {
			return nil
		}
		return e.onDeletedIncremental(ctx, run, affected)
	})
}

// Status returns the current and last run.
func (e *SyncEngine) Status() domain.SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := domain.SyncStatus{Running: e.current != nil}
	if e.current != nil {
		current := *e.current
		status.Current = &current
	}
	if e.last != nil {
		last := *e.last
		status.Last = &last
	}
	return status
}

// History returns recent runs, newest first.
func (e *SyncEngine) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if e.runs == nil {
		return nil, nil
	}
	runs, err := e.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}

func (e *SyncEngine) fullReindex(ctx context.Context, run *domain.SyncRun) error {
	graphIDs, err := e.source.ListGraphIDs(ctx)
	if err != nil {
		return fmt.Errorf("list graphs: %w", err)
	}

	logger.Info("Reindexing %d graphs", len(graphIDs))

	var errs []error
	for _, graphID := range graphIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.reindexGraph(ctx, run, graphID, false); err != nil {
			err = fmt.Errorf("reindex graph %s: %w", graphID, err)
			if errors.Is(err, domain.ErrSourceUnavailable) {
				return errors.Join(append(errs, err)...)
			}
			logger.Error("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *SyncEngine) reindexGraph(ctx context.Context, run *domain.SyncRun, graphID domain.GraphID, waitForRefresh bool) error {
	snapshot, err := e.source.FetchGraphSnapshot(ctx, graphID)
	if err != nil {
		return fmt.Errorf("fetch graph: %w", err)
	}
	if n := snapshot.Dropped(); n > 0 {
		logger.Warn("Ignored %d nodes of other graphs in snapshot of graph %s", n, graphID)
	}

	vocabulary, ok := documents.VocabularyFromSnapshot(snapshot)
	if !ok {
		logger.Warn("Graph %s has no vocabulary, skipping", graphID)
		return nil
	}

	conceptIDs := snapshot.ConceptIDs()
	concepts := make([]domain.Concept, 0, len(conceptIDs))
	for _, id := range conceptIDs {
		if c, ok := documents.FromSnapshot(snapshot, id, vocabulary); ok {
			concepts = append(concepts, c)
		}
	}

	logger.Debug("Graph %s: %d nodes, %d concept documents", graphID, snapshot.Len(), len(concepts))
	e.write(ctx, run, concepts, nil, waitForRefresh)
	return nil
}

func (e *SyncEngine) onSavedIncremental(ctx context.Context, run *domain.SyncRun, affected domain.AffectedNodes) error {
	vocabulary, ok, err := e.fetchVocabulary(ctx, affected.GraphID)
	if err != nil || !ok {
		return err
	}

	updated, err := e.fetchConcepts(ctx, vocabulary, affected.ConceptIDs)
	if err != nil {
		return fmt.Errorf("fetch saved concepts: %w", err)
	}
	before := e.readBack(ctx, affected.GraphID, affected.ConceptIDs)

	neighborIDs := neighborsOf(affected.ConceptIDs, updated, before)
	neighbors, err := e.fetchConcepts(ctx, vocabulary, neighborIDs)
	if err != nil {
		return fmt.Errorf("fetch neighbours: %w", err)
	}

	logger.Debug("Graph %s save: %d updated, %d previously indexed, %d neighbours",
		affected.GraphID, len(updated), len(before), len(neighbors))

	e.write(ctx, run, dedupe(append(updated, neighbors...)), nil, true)
	return nil
}

func (e *SyncEngine) onDeletedIncremental(ctx context.Context, run *domain.SyncRun, affected domain.AffectedNodes) error {
	before := e.readBack(ctx, affected.GraphID, affected.ConceptIDs)
	neighborIDs := neighborsOf(affected.ConceptIDs, before)

	var neighbors []domain.Concept
	if len(neighborIDs) > 0 {
		vocabulary, ok, err := e.fetchVocabulary(ctx, affected.GraphID)
		if err != nil {
			return err
		}
		if ok {
			neighbors, err = e.fetchConcepts(ctx, vocabulary, neighborIDs)
			if err != nil {
				return fmt.Errorf("fetch neighbours: %w", err)
			}
		}
	}

	deletes := make([]domain.DocumentKey, 0, len(affected.ConceptIDs))
	for _, id := range affected.ConceptIDs {
		deletes = append(deletes, domain.NewDocumentKey(affected.GraphID, id))
	}

	logger.Debug("Graph %s delete: %d deleted, %d previously indexed, %d neighbours",
		affected.GraphID, len(deletes), len(before), len(neighbors))

	e.write(ctx, run, neighbors, deletes, true)
	return nil
}

// fetchVocabulary returns false when the graph has no vocabulary node.
func (e *SyncEngine) fetchVocabulary(ctx context.Context, graphID domain.GraphID) (domain.Vocabulary, bool, error) {
	node, err := e.source.FetchVocabulary(ctx, graphID)
	if err != nil {
		return domain.Vocabulary{}, false, fmt.Errorf("fetch vocabulary: %w", err)
	}
	if node == nil {
		logger.Warn("Graph %s has no vocabulary, skipping", graphID)
		return domain.Vocabulary{}, false, nil
	}
	return documents.VocabularyFromNode(graphID, *node), true, nil
}

func (e *SyncEngine) fetchConcepts(ctx context.Context, vocabulary domain.Vocabulary, ids []domain.NodeID) ([]domain.Concept, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	nodes, err := e.source.FetchConcepts(ctx, vocabulary.GraphID, ids)
	if err != nil {
		return nil, err
	}
	concepts := make([]domain.Concept, 0, len(nodes))
	for _, node := range nodes {
		if c, ok := documents.FromNodeTree(node, vocabulary); ok {
			concepts = append(concepts, c)
		}
	}
	return concepts, nil
}

// readBack returns the indexed versions of ids. Missing documents and read
// failures are skipped.
func (e *SyncEngine) readBack(ctx context.Context, graphID domain.GraphID, ids []domain.NodeID) []domain.Concept {
	var concepts []domain.Concept
	for _, id := range ids {
		key := domain.NewDocumentKey(graphID, id)
		doc, err := e.index.GetDocument(ctx, key)
		if err != nil {
			logger.Warn("Read indexed document %s: %v", key, err)
			continue
		}
		if c, ok := documents.FromIndexDocument(doc); ok {
			concepts = append(concepts, c)
		}
	}
	return concepts
}

// write sends one bulk request. Index failures are logged and counted but
// never fail the run; a later event or reindex heals the gap.
func (e *SyncEngine) write(ctx context.Context, run *domain.SyncRun, upserts []domain.Concept, deletes []domain.DocumentKey, waitForRefresh bool) {
	if len(upserts) == 0 && len(deletes) == 0 {
		return
	}

	result, err := e.index.BulkUpsertAndDelete(ctx, upserts, deletes, waitForRefresh)
	if err != nil {
		logger.Error("Bulk write of %d upserts and %d deletes failed: %v", len(upserts), len(deletes), err)
		e.recordFailure(run)
		return
	}
	if result.Failed {
		e.recordFailure(run)
		return
	}

	e.mu.Lock()
	run.Upserts += result.Upserts
	run.Deletes += result.Deletes
	e.mu.Unlock()

	metrics.DocumentsUpserted.Add(float64(result.Upserts))
	metrics.DocumentsDeleted.Add(float64(result.Deletes))
}

func (e *SyncEngine) recordFailure(run *domain.SyncRun) {
	e.mu.Lock()
	run.IndexErrors++
	e.mu.Unlock()
	metrics.BulkFailures.Inc()
}

func (e *SyncEngine) track(ctx context.Context, kind domain.SyncKind, graphID domain.GraphID, fn func(*domain.SyncRun) error) error {
	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		GraphID:   graphID,
		StartedAt: e.now(),
	}

	e.mu.Lock()
	e.current = run
	e.mu.Unlock()

	err := fn(run)

	e.mu.Lock()
	run.FinishedAt = e.now()
	if err != nil {
		run.Error = err.Error()
	}
	finished := *run
	e.current = nil
	e.last = &finished
	e.mu.Unlock()

	metrics.SyncRunsTotal.WithLabelValues(string(kind), finished.Outcome()).Inc()
	metrics.SyncDuration.WithLabelValues(string(kind)).Observe(finished.Duration().Seconds())

	if err != nil {
		logger.Error("Sync run %s (%s) failed: %v", finished.ID, kind, err)
	} else {
		logger.Info("Sync run %s (%s) finished: %d upserts, %d deletes, %d index errors",
			finished.ID, kind, finished.Upserts, finished.Deletes, finished.IndexErrors)
	}

	if e.runs != nil {
		if saveErr := e.runs.Save(ctx, finished); saveErr != nil {
			logger.Warn("Save sync run %s: %v", finished.ID, saveErr)
		}
	}
	return err
}

// neighborsOf returns the broader and narrower ids of the given concepts,
// excluding the changed ids themselves, in first-seen order.
func neighborsOf(changed []domain.NodeID, sets ...[]domain.Concept) []domain.NodeID {
	seen := make(map[domain.NodeID]bool, len(changed))
	for _, id := range changed {
		seen[id] = true
	}
	var out []domain.NodeID
	for _, concepts := range sets {
		for _, c := range concepts {
			for _, id := range c.Neighbors() {
				if seen[id] {
					continue
				}
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func dedupe(concepts []domain.Concept) []domain.Concept {
	seen := make(map[domain.DocumentKey]bool, len(concepts))
	out := make([]domain.Concept, 0, len(concepts))
	for _, c := range concepts {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out = append(out, c)
	}
	return out
}
