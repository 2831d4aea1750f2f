package repositories

import (
	"context"

	"taskmanager/internal/models"
)

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// GetByIDForUser returns the task only when it is owned by userID.
	GetByIDForUser(ctx context.Context, id, userID string) (*models.Task, error)
	// ListByIDs returns the tasks with the given ids, most recently created
	// first. Ids with no matching task are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]models.Task, error)
	// ListByUser returns the user's tasks matching flag in store order.
	ListByUser(ctx context.Context, userID string, flag models.TaskFlag) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}
