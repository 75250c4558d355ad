package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

var toolsStarted = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func toolsRun(id string, kind domain.SyncKind, graph domain.GraphID) domain.SyncRun {
	return domain.SyncRun{
		ID:         id,
		Kind:       kind,
		GraphID:    graph,
		StartedAt:  toolsStarted,
		FinishedAt: toolsStarted.Add(1500 * time.Millisecond),
		Upserts:    4,
	}
}

func newToolsServer(t *testing.T, dispatcher *mockDispatcher, engine *mockEngine) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Dispatcher: dispatcher, Engine: engine})
	require.NoError(t, err)
	return server
}

func TestServer_handleReindexGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("reindexes through the dispatcher and reports the run", func(t *testing.T) {
		last := toolsRun("r1", domain.SyncKindGraph, "G")
		dispatcher := &mockDispatcher{}
		server := newToolsServer(t, dispatcher, &mockEngine{status: domain.SyncStatus{Last: &last}})

		_, output, err := server.handleReindexGraph(ctx, nil, ReindexGraphInput{GraphID: "G"})

		require.NoError(t, err)
		assert.Equal(t, []domain.GraphID{"G"}, dispatcher.graphs)
		assert.Equal(t, "r1", output.Run.ID)
		assert.Equal(t, "graph", output.Run.Kind)
		assert.Equal(t, "G", output.Run.GraphID)
		assert.Equal(t, "1.5s", output.Run.Duration)
		assert.Equal(t, "2024-05-01T12:00:00Z", output.Run.StartedAt)
	})

	t.Run("graph id is required", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		server := newToolsServer(t, dispatcher, &mockEngine{})

		_, _, err := server.handleReindexGraph(ctx, nil, ReindexGraphInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, dispatcher.graphs)
	})

	t.Run("dispatcher error is returned", func(t *testing.T) {
		server := newToolsServer(t, &mockDispatcher{err: domain.ErrSourceUnavailable}, &mockEngine{})

		_, _, err := server.handleReindexGraph(ctx, nil, ReindexGraphInput{GraphID: "G"})

		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestServer_handleFullReindex(t *testing.T) {
	ctx := context.Background()

	t.Run("runs once", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		server := newToolsServer(t, dispatcher, &mockEngine{})

		_, output, err := server.handleFullReindex(ctx, nil, FullReindexInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, dispatcher.full)
		assert.Empty(t, output.Run.ID)
	})

	t.Run("returns error", func(t *testing.T) {
		server := newToolsServer(t, &mockDispatcher{err: errors.New("boom")}, &mockEngine{})

		_, _, err := server.handleFullReindex(ctx, nil, FullReindexInput{})

		assert.EqualError(t, err, "boom")
	})
}

func TestServer_handleSyncStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("default limit is 10", func(t *testing.T) {
		engine := &mockEngine{}
		server := newToolsServer(t, &mockDispatcher{}, engine)

		_, output, err := server.handleSyncStatus(ctx, nil, SyncStatusInput{})

		require.NoError(t, err)
		assert.Equal(t, []int{10}, engine.limits)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Runs)
	})

	t.Run("lists runs and the current one", func(t *testing.T) {
		current := domain.SyncRun{ID: "r3", Kind: domain.SyncKindFull, StartedAt: toolsStarted}
		engine := &mockEngine{
			status: domain.SyncStatus{Running: true, Current: &current},
			runs: []domain.SyncRun{
				toolsRun("r2", domain.SyncKindSaved, "G"),
				toolsRun("r1", domain.SyncKindGraph, "G"),
			},
		}
		server := newToolsServer(t, &mockDispatcher{}, engine)

		_, output, err := server.handleSyncStatus(ctx, nil, SyncStatusInput{Limit: 1})

		require.NoError(t, err)
		assert.True(t, output.Running)
		require.NotNil(t, output.Current)
		assert.Equal(t, "r3", output.Current.ID)
		assert.Empty(t, output.Current.Duration)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "r2", output.Runs[0].ID)
	})

	t.Run("history error is returned", func(t *testing.T) {
		server := newToolsServer(t, &mockDispatcher{}, &mockEngine{historyErr: errors.New("db locked")})

		_, _, err := server.handleSyncStatus(ctx, nil, SyncStatusInput{})

		assert.EqualError(t, err, "db locked")
	})
}
