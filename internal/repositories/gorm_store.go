package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a GORM connection. Transactions are real
// database transactions.
type GORMStore struct {
	db    *gorm.DB
	users *GORMUserRepository
	tasks *GORMTaskRepository
}

// NewGORMStore creates a Store over db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:    db,
		users: NewGORMUserRepository(db),
		tasks: NewGORMTaskRepository(db),
	}
}

func (s *GORMStore) Users() UserRepository { return s.users }
func (s *GORMStore) Tasks() TaskRepository { return s.tasks }

// WithinTransaction runs fn inside a database transaction, committing when fn
// returns nil and rolling back otherwise.
func (s *GORMStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
