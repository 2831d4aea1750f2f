package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskmanager/internal/models"

	"github.com/google/uuid"
)

// memoryState is the data shared by the in-memory repositories.
type memoryState struct {
	mu        sync.RWMutex
	users     map[string]models.User
	userTasks map[string][]string
	tasks     map[string]models.Task
	taskOrder []string // insertion order, used as the natural store order
}

// MemoryStore is an in-memory Store. WithinTransaction does not provide
// atomicity: each write is applied as soon as it is made.
type MemoryStore struct {
	users *MemoryUserRepository
	tasks *MemoryTaskRepository
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	state := &memoryState{
		users:     make(map[string]models.User),
		userTasks: make(map[string][]string),
		tasks:     make(map[string]models.Task),
	}
	return &MemoryStore{
		users: &MemoryUserRepository{state: state},
		tasks: &MemoryTaskRepository{state: state},
	}
}

func (s *MemoryStore) Users() UserRepository { return s.users }
func (s *MemoryStore) Tasks() TaskRepository { return s.tasks }

// WithinTransaction runs fn against the store itself.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

// stampCreated fills zero timestamps the way GORM's autoCreateTime does.
func stampCreated(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = now
	}
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	state *memoryState
}

// Create adds a new user, enforcing unique usernames and emails.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, existing := range r.state.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicateKey)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stampCreated(&user.CreatedAt, &user.UpdatedAt)
	stored := *user
	stored.Tasks = nil
	r.state.users[user.ID] = stored
	return nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "username", username)
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "email", email)
}

// GetByID returns a user and their task list.
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	user, ok := r.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrRecordNotFound)
	}
	user.Tasks = append([]string{}, r.state.userTasks[id]...)
	return &user, nil
}

// AppendTask adds taskID to the end of the user's task list.
func (r *MemoryUserRepository) AppendTask(ctx context.Context, userID, taskID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	r.state.userTasks[userID] = append(r.state.userTasks[userID], taskID)
	return nil
}

// RemoveTask removes every occurrence of taskID from the user's task list.
func (r *MemoryUserRepository) RemoveTask(ctx context.Context, userID, taskID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	ids := r.state.userTasks[userID]
	kept := ids[:0]
	for _, id := range ids {
		if id != taskID {
			kept = append(kept, id)
		}
	}
	r.state.userTasks[userID] = kept
	return nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool, field, value string) (*models.User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	for _, user := range r.state.users {
		if match(user) {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s %s: %w", field, value, ErrRecordNotFound)
}

// MemoryTaskRepository is an in-memory implementation of TaskRepository.
type MemoryTaskRepository struct {
	state *memoryState
}

// Create adds a new task.
func (r *MemoryTaskRepository) Create(ctx context.Context, task *models.Task) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	stampCreated(&task.CreatedAt, &task.UpdatedAt)
	r.state.tasks[task.ID] = *task
	r.state.taskOrder = append(r.state.taskOrder, task.ID)
	return nil
}

// GetByID returns a task by its ID.
func (r *MemoryTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	task, ok := r.state.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task with ID %s: %w", id, ErrRecordNotFound)
	}
	return &task, nil
}

// GetByIDForUser returns a task by its ID when userID owns it.
func (r *MemoryTaskRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Task, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	task, ok := r.state.tasks[id]
	if !ok || task.UserID != userID {
		return nil, fmt.Errorf("task with ID %s for user %s: %w", id, userID, ErrRecordNotFound)
	}
	return &task, nil
}

// ListByIDs returns the tasks with the given IDs, newest first.
func (r *MemoryTaskRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	// Walk the list backwards so that equal timestamps keep newest-appended first.
	tasks := make([]models.Task, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if task, ok := r.state.tasks[id]; ok && !seen[id] {
			seen[id] = true
			tasks = append(tasks, task)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// ListByUser returns the user's tasks matching flag in insertion order.
func (r *MemoryTaskRepository) ListByUser(ctx context.Context, userID string, flag models.TaskFlag) ([]models.Task, error) {
	if !flag.Valid() {
		return nil, fmt.Errorf("unknown task flag %q", flag)
	}

	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	tasks := []models.Task{}
	for _, id := range r.state.taskOrder {
		task, ok := r.state.tasks[id]
		if ok && task.UserID == userID && flag.Matches(task) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Update replaces the mutable fields of an existing task.
func (r *MemoryTaskRepository) Update(ctx context.Context, task *models.Task) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task with ID %s for update: %w", task.ID, ErrRecordNotFound)
	}
	existing.Title = task.Title
	existing.Desc = task.Desc
	existing.Important = task.Important
	existing.Completed = task.Completed
	existing.UpdatedAt = time.Now()
	r.state.tasks[task.ID] = existing
	task.UpdatedAt = existing.UpdatedAt
	return nil
}

// Delete removes a task by its ID.
func (r *MemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.tasks[id]; !ok {
		return fmt.Errorf("task with ID %s for deletion: %w", id, ErrRecordNotFound)
	}
	delete(r.state.tasks, id)
	for i, taskID := range r.state.taskOrder {
		if taskID == id {
			r.state.taskOrder = append(r.state.taskOrder[:i], r.state.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}
