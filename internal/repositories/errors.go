package repositories

import "errors"

var (
	// ErrRecordNotFound is wrapped by every lookup, update or delete that
	// matched nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is wrapped when a unique username or email is reused.
	ErrDuplicateKey = errors.New("duplicate key")
)
