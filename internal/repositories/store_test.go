package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) repositories.Store {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	return repositories.NewGORMStore(db)
}

func newMemoryStore(t *testing.T) repositories.Store {
	return repositories.NewMemoryStore()
}

var stores = map[string]func(t *testing.T) repositories.Store{
	"gorm-sqlite": newSQLiteStore,
	"memory":      newMemoryStore,
}

func createUser(t *testing.T, store repositories.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func TestUserRepository(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			alice := createUser(t, store, "alice")

			byName, err := store.Users().GetByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, byName.ID)

			byEmail, err := store.Users().GetByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, byEmail.ID)

			_, err = store.Users().GetByUsername(ctx, "bob")
			assert.True(t, errors.Is(err, repositories.ErrRecordNotFound))
			_, err = store.Users().GetByID(ctx, uuid.New().String())
			assert.True(t, errors.Is(err, repositories.ErrRecordNotFound))

			dup := &models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
			err = store.Users().Create(ctx, dup)
			assert.True(t, errors.Is(err, repositories.ErrDuplicateKey), "got %v", err)
		})
	}
}

func TestUserRepository_TaskList(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			alice := createUser(t, store, "alice")

			first, second := uuid.New().String(), uuid.New().String()
			require.NoError(t, store.Users().AppendTask(ctx, alice.ID, first))
			time.Sleep(2 * time.Millisecond)
			require.NoError(t, store.Users().AppendTask(ctx, alice.ID, second))

			user, err := store.Users().GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{first, second}, user.Tasks)

			require.NoError(t, store.Users().RemoveTask(ctx, alice.ID, first))
			require.NoError(t, store.Users().RemoveTask(ctx, alice.ID, uuid.New().String()), "removing an unknown id is a no-op")

			user, err = store.Users().GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{second}, user.Tasks)
		})
	}
}

func TestTaskRepository(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			alice := createUser(t, store, "alice")
			bob := createUser(t, store, "bob")

			base := time.Now().Add(-time.Hour).UTC()
			older := &models.Task{Title: "older", UserID: alice.ID, CreatedAt: base}
			newer := &models.Task{Title: "newer", UserID: alice.ID, Important: true, CreatedAt: base.Add(time.Minute)}
			done := &models.Task{Title: "done", UserID: alice.ID, Completed: true, CreatedAt: base.Add(2 * time.Minute)}
			other := &models.Task{Title: "bob's", UserID: bob.ID, Important: true, CreatedAt: base.Add(3 * time.Minute)}
			for _, task := range []*models.Task{older, newer, done, other} {
				require.NoError(t, store.Tasks().Create(ctx, task))
				require.NotEmpty(t, task.ID)
			}

			got, err := store.Tasks().GetByIDForUser(ctx, newer.ID, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "newer", got.Title)
			_, err = store.Tasks().GetByIDForUser(ctx, newer.ID, bob.ID)
			assert.True(t, errors.Is(err, repositories.ErrRecordNotFound))

			listed, err := store.Tasks().ListByIDs(ctx, []string{older.ID, uuid.New().String(), newer.ID, done.ID})
			require.NoError(t, err)
			require.Len(t, listed, 3)
			assert.Equal(t, []string{done.ID, newer.ID, older.ID}, []string{listed[0].ID, listed[1].ID, listed[2].ID})

			empty, err := store.Tasks().ListByIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, empty)

			important, err := store.Tasks().ListByUser(ctx, alice.ID, models.FlagImportant)
			require.NoError(t, err)
			require.Len(t, important, 1)
			assert.Equal(t, newer.ID, important[0].ID)

			completed, err := store.Tasks().ListByUser(ctx, alice.ID, models.FlagCompleted)
			require.NoError(t, err)
			require.Len(t, completed, 1)
			assert.Equal(t, done.ID, completed[0].ID)

			incomplete, err := store.Tasks().ListByUser(ctx, alice.ID, models.FlagIncomplete)
			require.NoError(t, err)
			assert.Len(t, incomplete, 2)
			for _, task := range incomplete {
				assert.False(t, task.Completed)
			}

			_, err = store.Tasks().ListByUser(ctx, alice.ID, models.TaskFlag("archived"))
			assert.Error(t, err)
		})
	}
}

func TestTaskRepository_UpdateAndDelete(t *testing.T) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			alice := createUser(t, store, "alice")

			task := &models.Task{Title: "draft", Desc: "first", UserID: alice.ID}
			require.NoError(t, store.Tasks().Create(ctx, task))

			task.Title = "final"
			task.Completed = true
			require.NoError(t, store.Tasks().Update(ctx, task))

			stored, err := store.Tasks().GetByID(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, "final", stored.Title)
			assert.Equal(t, "first", stored.Desc)
			assert.True(t, stored.Completed)
			assert.Equal(t, alice.ID, stored.UserID)

			missing := &models.Task{ID: uuid.New().String(), Title: "ghost"}
			assert.True(t, errors.Is(store.Tasks().Update(ctx, missing), repositories.ErrRecordNotFound))

			require.NoError(t, store.Tasks().Delete(ctx, task.ID))
			_, err = store.Tasks().GetByID(ctx, task.ID)
			assert.True(t, errors.Is(err, repositories.ErrRecordNotFound))
			assert.True(t, errors.Is(store.Tasks().Delete(ctx, task.ID), repositories.ErrRecordNotFound))
		})
	}
}

func TestGORMStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	alice := createUser(t, store, "alice")

	task := &models.Task{Title: "never", UserID: alice.ID}
	err := store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		if err := tx.Users().AppendTask(ctx, alice.ID, task.ID); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	_, err = store.Tasks().GetByID(ctx, task.ID)
	assert.True(t, errors.Is(err, repositories.ErrRecordNotFound))
	user, err := store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Tasks)
}

func TestMemoryStore_TransactionIsNotAtomic(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	alice := createUser(t, store, "alice")

	task := &models.Task{Title: "kept", UserID: alice.ID}
	err := store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	_, err = store.Tasks().GetByID(ctx, task.ID)
	assert.NoError(t, err)
}
