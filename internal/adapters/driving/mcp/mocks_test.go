package mcp

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// mockDispatcher is a mock implementation of driving.ChangeDispatcher.
type mockDispatcher struct {
	graphs []domain.GraphID
	full   int
	err    error
}

func (m *mockDispatcher) Dispatch(_ context.Context, _ domain.ChangeEvent) error {
	return m.err
}

func (m *mockDispatcher) InitIndex(_ context.Context, _ bool) error {
	return m.err
}

func (m *mockDispatcher) FullReindex(_ context.Context) error {
	m.full++
	return m.err
}

func (m *mockDispatcher) ReindexGraph(_ context.Context, graphID domain.GraphID) error {
	m.graphs = append(m.graphs, graphID)
	return m.err
}

func (m *mockDispatcher) Handle(_ context.Context, _ domain.Job) error {
	return m.err
}

// mockEngine is a mock implementation of driving.SyncEngine.
type mockEngine struct {
	status     domain.SyncStatus
	runs       []domain.SyncRun
	historyErr error
	limits     []int
}

func (m *mockEngine) InitIndex(_ context.Context, _ bool) error {
	return nil
}

func (m *mockEngine) FullReindex(_ context.Context) error {
	return nil
}

func (m *mockEngine) ReindexGraph(_ context.Context, _ domain.GraphID, _ bool) error {
	return nil
}

func (m *mockEngine) OnSaved(_ context.Context, _ domain.AffectedNodes) error {
	return nil
}

func (m *mockEngine) OnDeleted(_ context.Context, _ domain.AffectedNodes) error {
	return nil
}

func (m *mockEngine) Status() domain.SyncStatus {
	return m.status
}

func (m *mockEngine) History(_ context.Context, limit int) ([]domain.SyncRun, error) {
	m.limits = append(m.limits, limit)
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}
