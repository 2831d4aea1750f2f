package repositories

import "context"

// Store groups the repositories and owns the transaction boundary for
// operations that write to both of them.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	// WithinTransaction runs fn against repositories bound to a single
	// transaction when the backend supports one. fn's error aborts it.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}
