package driving

import "context"

// Scheduler triggers periodic background work such as the scheduled
// full reindex.
type Scheduler interface {
	// Enabled reports whether anything is scheduled.
	Enabled() bool

	// Run blocks until ctx is cancelled.
	Run(ctx context.Context) error
}
