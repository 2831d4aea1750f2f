package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// Create creates a new task in the database.
func (r *GORMTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a single task by its ID from the database.
func (r *GORMTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get task by ID %s: %w", id, err)
	}
	return &task, nil
}

// GetByIDForUser retrieves a task by its ID as long as userID owns it.
func (r *GORMTaskRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task with ID %s for user %s: %w", id, userID, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get task by ID %s: %w", id, err)
	}
	return &task, nil
}

// ListByIDs retrieves the tasks with the given IDs, newest first.
func (r *GORMTaskRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByUser retrieves the user's tasks that match flag.
func (r *GORMTaskRepository) ListByUser(ctx context.Context, userID string, flag models.TaskFlag) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch flag {
	case models.FlagImportant:
		query = query.Where("important = ?", true)
	case models.FlagCompleted:
		query = query.Where("completed = ?", true)
	case models.FlagIncomplete:
		query = query.Where("completed = ?", false)
	default:
		return nil, fmt.Errorf("unknown task flag %q", flag)
	}

	tasks := []models.Task{}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s tasks of user %s: %w", flag, userID, err)
	}
	return tasks, nil
}

// Update writes the mutable fields of an existing task. The owner is never changed.
func (r *GORMTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"title":       task.Title,
		"description": task.Desc,
		"important":   task.Important,
		"completed":   task.Completed,
		"updated_at":  task.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task with ID %s for update: %w", task.ID, ErrRecordNotFound)
	}
	return nil
}

// Delete deletes a task by its ID from the database.
func (r *GORMTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task with ID %s for deletion: %w", id, ErrRecordNotFound)
	}
	return nil
}
