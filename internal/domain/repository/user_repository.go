package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no active row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	// GetByUserID returns the row in any lifecycle state.
	GetByUserID(ctx context.Context, userID string) (*entity.User, error)
	// ExistsUserID counts soft-deleted rows too: a user id is never reused.
	ExistsUserID(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	SoftDelete(ctx context.Context, userID, updatedBy string) error
}
