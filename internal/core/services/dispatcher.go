package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/metrics"
)

// Ensure ChangeDispatcher implements the interface.
var _ driving.ChangeDispatcher = (*ChangeDispatcher)(nil)

// ChangeDispatcher turns change events into per-graph engine calls.
// Every call into the engine happens under one lock, so incremental updates,
// graph rebuilds and full reindexes never interleave.
type ChangeDispatcher struct {
	engine driving.SyncEngine
	mu     sync.Mutex
}

// NewChangeDispatcher creates a dispatcher in front of engine.
func NewChangeDispatcher(engine driving.SyncEngine) *ChangeDispatcher {
	return &ChangeDispatcher{engine: engine}
}

// Dispatch applies a change event. Graphs are processed one at a time in the
// order they first appear in the event. A failing graph does not stop the
// others; all failures are returned joined.
func (d *ChangeDispatcher) Dispatch(ctx context.Context, event domain.ChangeEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	metrics.NotificationsTotal.WithLabelValues(string(event.Type)).Inc()

	if event.Type.IsLifecycle() {
		logger.Debug("Ignoring %s event", event.Type)
		return nil
	}

	groups := domain.GroupByGraph(event.Refs())
	if len(groups) == 0 {
		logger.Debug("%s event %s touches no indexed nodes", event.Type, event.ID)
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, affected := range groups {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		logger.Debug("%s event %s: graph %s, %d vocabulary ids, %d concept ids",
			event.Type, event.ID, affected.GraphID, len(affected.VocabularyIDs), len(affected.ConceptIDs))

		var err error
		switch event.Type {
		case domain.EventSaved:
			err = d.engine.OnSaved(ctx, affected)
		case domain.EventDeleted:
			err = d.engine.OnDeleted(ctx, affected)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("graph %s: %w", affected.GraphID, err))
		}
	}
	return errors.Join(errs...)
}

// InitIndex runs the engine's index initialisation under the lock.
func (d *ChangeDispatcher) InitIndex(ctx context.Context, deleteExisting bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.InitIndex(ctx, deleteExisting)
}

// FullReindex rebuilds every graph under the lock.
func (d *ChangeDispatcher) FullReindex(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.FullReindex(ctx)
}

// ReindexGraph rebuilds one graph under the lock, waiting for refresh.
func (d *ChangeDispatcher) ReindexGraph(ctx context.Context, graphID domain.GraphID) error {
	if graphID == "" {
		return fmt.Errorf("%w: empty graph id", domain.ErrInvalidInput)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.ReindexGraph(ctx, graphID, true)
}

// Handle executes a queued job.
func (d *ChangeDispatcher) Handle(ctx context.Context, job domain.Job) error {
	switch job.Kind {
	case domain.JobEvent:
		return d.Dispatch(ctx, job.Event)
	case domain.JobFullReindex:
		return d.FullReindex(ctx)
	case domain.JobReindexGraph:
		return d.ReindexGraph(ctx, job.GraphID)
	default:
		return fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidInput, job.Kind)
	}
}
