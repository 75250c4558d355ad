package domain

import "time"

// SyncKind names the engine entry point a run was started from.
type SyncKind string

// Sync run kinds.
const (
	SyncKindInit    SyncKind = "init"
	SyncKindFull    SyncKind = "full"
	SyncKindGraph   SyncKind = "graph"
	SyncKindSaved   SyncKind = "saved"
	SyncKindDeleted SyncKind = "deleted"
)

// SyncRun records one invocation of the sync engine.
type SyncRun struct {
	ID          string    `json:"id"`
	Kind        SyncKind  `json:"kind"`
	GraphID     GraphID   `json:"graph_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Upserts     int       `json:"upserts"`
	Deletes     int       `json:"deletes"`
	IndexErrors int       `json:"index_errors"`
	Error       string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run finished without a fatal error.
// Index write failures are logged and counted but do not fail a run.
func (r SyncRun) Succeeded() bool {
	return r.Error == ""
}

// Outcome returns "ok" or "error", for metrics labels.
func (r SyncRun) Outcome() string {
	if r.Succeeded() {
		return "ok"
	}
	return "error"
}

// SyncStatus is a snapshot of engine activity.
type SyncStatus struct {
	Running bool     `json:"running"`
	Current *SyncRun `json:"current,omitempty"`
	Last    *SyncRun `json:"last,omitempty"`
}
