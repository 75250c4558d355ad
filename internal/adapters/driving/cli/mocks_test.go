package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/httpapi"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// mockSyncEngine implements driving.SyncEngine for testing.
type mockSyncEngine struct {
	status     domain.SyncStatus
	runs       []domain.SyncRun
	historyErr error
	limits     []int
}

func (m *mockSyncEngine) InitIndex(_ context.Context, _ bool) error { return nil }
func (m *mockSyncEngine) FullReindex(_ context.Context) error      { return nil }
func (m *mockSyncEngine) ReindexGraph(_ context.Context, _ domain.GraphID, _ bool) error {
	return nil
}
func (m *mockSyncEngine) OnSaved(_ context.Context, _ domain.AffectedNodes) error   { return nil }
func (m *mockSyncEngine) OnDeleted(_ context.Context, _ domain.AffectedNodes) error { return nil }
func (m *mockSyncEngine) Status() domain.SyncStatus                                 { return m.status }

func (m *mockSyncEngine) History(_ context.Context, limit int) ([]domain.SyncRun, error) {
	m.limits = append(m.limits, limit)
	return m.runs, m.historyErr
}

// mockChangeDispatcher implements driving.ChangeDispatcher for testing.
type mockChangeDispatcher struct {
	events   []domain.ChangeEvent
	inits    []bool
	fullRuns int
	graphs   []domain.GraphID
	err      error
}

func (m *mockChangeDispatcher) Dispatch(_ context.Context, event domain.ChangeEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockChangeDispatcher) InitIndex(_ context.Context, deleteExisting bool) error {
	m.inits = append(m.inits, deleteExisting)
	return m.err
}

func (m *mockChangeDispatcher) FullReindex(_ context.Context) error {
	m.fullRuns++
	return m.err
}

func (m *mockChangeDispatcher) ReindexGraph(_ context.Context, graphID domain.GraphID) error {
	m.graphs = append(m.graphs, graphID)
	return m.err
}

func (m *mockChangeDispatcher) Handle(_ context.Context, _ domain.Job) error {
	return m.err
}

// setupSyncTest installs mock sync services and restores the originals on cleanup.
func setupSyncTest(t *testing.T, engine *mockSyncEngine, dispatcher *mockChangeDispatcher) {
	t.Helper()
	oldEngine, oldDispatcher, oldLock := syncEngine, changeDispatcher, lockWriter
	syncEngine, changeDispatcher = engine, dispatcher
	lockWriter = func() error { return nil }
	t.Cleanup(func() {
		syncEngine, changeDispatcher, lockWriter = oldEngine, oldDispatcher, oldLock
	})
}

// mockRemote implements remoteService for testing.
type mockRemote struct {
	graphs []domain.GraphID
	events []domain.ChangeEvent
	err    error
}

func (m *mockRemote) Reindex(_ context.Context, graphID domain.GraphID) (*httpapi.Accepted, error) {
	m.graphs = append(m.graphs, graphID)
	if m.err != nil {
		return nil, m.err
	}
	job := domain.JobFullReindex
	if graphID != "" {
		job = domain.JobReindexGraph
	}
	return &httpapi.Accepted{Status: "accepted", Job: string(job), Queued: len(m.graphs)}, nil
}

func (m *mockRemote) Notify(_ context.Context, event domain.ChangeEvent) (*httpapi.Accepted, error) {
	m.events = append(m.events, event)
	if m.err != nil {
		return nil, m.err
	}
	return &httpapi.Accepted{Status: "accepted", Job: string(domain.JobEvent), Queued: len(m.events)}, nil
}

// setupServingTest makes the writer lock look held by a running service and
// routes forwarded jobs to remote.
func setupServingTest(t *testing.T, remote *mockRemote) {
	t.Helper()
	oldLock, oldRemote := lockWriter, newRemote
	lockWriter = func() error { return errWriterBusy }
	newRemote = func() (remoteService, error) { return remote, nil }
	t.Cleanup(func() {
		lockWriter, newRemote = oldLock, oldRemote
	})
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(nil)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
