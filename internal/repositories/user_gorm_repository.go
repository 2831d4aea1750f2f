package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID retrieves a user and their task list by ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.first(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}

	var refs []models.UserTask
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Order("created_at asc").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks of user %s: %w", id, err)
	}
	user.Tasks = make([]string, 0, len(refs))
	for _, ref := range refs {
		user.Tasks = append(user.Tasks, ref.TaskID)
	}
	return user, nil
}

// AppendTask adds taskID to the end of the user's task list.
func (r *GORMUserRepository) AppendTask(ctx context.Context, userID, taskID string) error {
	ref := models.UserTask{UserID: userID, TaskID: taskID}
	if err := r.db.WithContext(ctx).Create(&ref).Error; err != nil {
		return fmt.Errorf("failed to add task %s to user %s: %w", taskID, userID, err)
	}
	return nil
}

// RemoveTask removes taskID from the user's task list.
func (r *GORMUserRepository) RemoveTask(ctx context.Context, userID, taskID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&models.UserTask{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove task %s from user %s: %w", taskID, userID, err)
	}
	return nil
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user where %s %q: %w", query, arg, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get user where %s %q: %w", query, arg, err)
	}
	return &user, nil
}
