package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventPublisher sends a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// TaskService handles business logic related to tasks.
type TaskService struct {
	store     repositories.Store
	validate  *validator.Validate
	publisher EventPublisher // optional
	exchange  string
}

// NewTaskService creates a new TaskService. publisher may be nil, in which
// case no task events are published.
func NewTaskService(store repositories.Store, publisher EventPublisher, exchange string) *TaskService {
	return &TaskService{
		store:     store,
		validate:  models.NewValidator(),
		publisher: publisher,
		exchange:  exchange,
	}
}

// TaskUpdate carries the fields of a partial update. A nil or empty field
// leaves the stored value unchanged.
type TaskUpdate struct {
	Title *string `json:"title"`
	Desc  *string `json:"desc"`
}

// CreateTask stores a new task owned by ownerID and appends it to the
// owner's task list.
func (s *TaskService) CreateTask(ctx context.Context, ownerID, title, desc string) (*models.Task, error) {
	if ownerID == "" {
		return nil, newError(ErrValidation, "User ID is required")
	}
	if !isID(ownerID) {
		return nil, newError(ErrValidation, "Invalid user ID format")
	}

	task := &models.Task{
		Title:  title,
		Desc:   desc,
		UserID: ownerID,
	}
	if err := s.validate.Struct(task); err != nil {
		return nil, newError(ErrValidation, "Please provide a task title")
	}

	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Users().GetByID(ctx, ownerID); err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return newError(ErrNotFound, "User not found")
			}
			return err
		}
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		return tx.Users().AppendTask(ctx, ownerID, task.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish("task.created", task)
	return task, nil
}

// ListTasks returns the owner's task list, most recently created first.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	user, err := s.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}

	return s.store.Tasks().ListByIDs(ctx, user.Tasks)
}

// DeleteTask deletes the task with taskID and removes it from ownerID's task
// list. The task is deleted whether or not ownerID owns it, and deleting a
// task that does not exist succeeds.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, ownerID string) error {
	var deleted *models.Task
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if task, err := tx.Tasks().GetByID(ctx, taskID); err == nil {
			deleted = task
		} else if !errors.Is(err, repositories.ErrRecordNotFound) {
			return err
		}
		if err := tx.Tasks().Delete(ctx, taskID); err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
			return err
		}
		return tx.Users().RemoveTask(ctx, ownerID, taskID)
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		s.publish("task.deleted", deleted)
	}
	return nil
}

// UpdateTask applies a partial update to a task owned by ownerID.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, ownerID string, update TaskUpdate) (*models.Task, error) {
	task, err := s.ownedTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil && *update.Title != "" {
		task.Title = *update.Title
	}
	if update.Desc != nil && *update.Desc != "" {
		task.Desc = *update.Desc
	}

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}
	s.publish("task.updated", task)
	return task, nil
}

// ToggleImportant flips the important flag of any task with taskID. It does
// not check who owns the task.
func (s *TaskService) ToggleImportant(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			log.Printf("Task not found for ID: %s", taskID)
			return nil, newError(ErrNotFound, "Task not found")
		}
		return nil, err
	}

	task.Important = !task.Important
	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}
	s.publish("task.updated", task)
	return task, nil
}

// ToggleCompleted flips the completed flag of a task owned by ownerID.
func (s *TaskService) ToggleCompleted(ctx context.Context, taskID, ownerID string) (*models.Task, error) {
	task, err := s.ownedTask(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, err
	}
	s.publish("task.updated", task)
	return task, nil
}

// QueryByFlag returns the owner's tasks that match flag.
func (s *TaskService) QueryByFlag(ctx context.Context, ownerID string, flag models.TaskFlag) ([]models.Task, error) {
	if !flag.Valid() {
		return nil, newError(ErrValidation, fmt.Sprintf("Unknown task filter %q", flag))
	}
	return s.store.Tasks().ListByUser(ctx, ownerID, flag)
}

func (s *TaskService) ownedTask(ctx context.Context, taskID, ownerID string) (*models.Task, error) {
	if !isID(taskID) {
		return nil, newError(ErrValidation, "Invalid task ID format")
	}
	task, err := s.store.Tasks().GetByIDForUser(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Task not found or unauthorized")
		}
		return nil, err
	}
	return task, nil
}

// publish sends a task event when a publisher is configured. Failures are
// logged and never fail the operation that triggered them.
func (s *TaskService) publish(eventType string, task *models.Task) {
	if s.publisher == nil {
		return
	}

	event := models.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Title:      task.Title,
		Important:  task.Important,
		Completed:  task.Completed,
		OccurredAt: time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for task %s: %v", eventType, task.ID, err)
		return
	}
	if err := s.publisher.Publish(s.exchange, eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for task %s: %v", eventType, task.ID, err)
	}
}

func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
