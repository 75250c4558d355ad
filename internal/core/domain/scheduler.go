package domain

import "time"

// ScheduledTask is a recurring background task and its persisted state.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last fired.
	LastRun time.Time

	// NextRun is when the task should fire next.
	NextRun time.Time

	// LastError holds the last submit error, if any.
	LastError string

	// Enabled indicates whether the task is active.
	Enabled bool
}

// IsDue reports whether an enabled task should fire at now.
// A task that never had NextRun set is due immediately.
func (t ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && !now.Before(t.NextRun)
}

// Task IDs for built-in tasks.
const (
	TaskIDFullReindex = "full-reindex"
)

// Job origins.
const (
	OriginHTTP      = "http"
	OriginRedis     = "redis"
	OriginCLI       = "cli"
	OriginMCP       = "mcp"
	OriginScheduler = "scheduler"
)
