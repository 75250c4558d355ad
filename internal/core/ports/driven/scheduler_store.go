package driven

import (
	"context"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// SchedulerStore persists scheduled task state so intervals survive restarts.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// SaveTask persists a task's state.
	// Creates or updates the task based on ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
}
