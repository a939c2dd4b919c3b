package repository

import "context"

// Store hands out repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	Boards() BoardRepository
	Comments() CommentRepository
	Files() FileRepository
	// WithTx runs fn inside a transaction and commits when fn returns nil.
	// A Store that is already transactional runs fn against itself, so
	// nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
