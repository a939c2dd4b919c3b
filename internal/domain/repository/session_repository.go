package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
)

// SessionStore keeps server-side sessions. Get returns (nil, nil) for an
// unknown or expired id.
type SessionStore interface {
	Create(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}
