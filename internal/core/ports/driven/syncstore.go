package driven

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// SyncRunStore persists sync run history.
type SyncRunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run domain.SyncRun) error

	// Get retrieves a run by id.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.SyncRun, error)

	// List returns the most recent runs, newest first.
	// A limit of zero or less returns all runs.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)
}
