package repositories

import (
	"context"

	"taskmanager/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns the user with its task list populated.
	GetByID(ctx context.Context, id string) (*models.User, error)
	AppendTask(ctx context.Context, userID, taskID string) error
	// RemoveTask drops taskID from the user's task list. Removing an id that
	// is not in the list is not an error.
	RemoveTask(ctx context.Context, userID, taskID string) error
}
