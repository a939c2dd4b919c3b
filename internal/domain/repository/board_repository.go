package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
)

// BoardRepository reads only active posts; every write matches active rows only.
type BoardRepository interface {
	Create(ctx context.Context, b *entity.Board) error
	GetByID(ctx context.Context, id int64) (*entity.Board, error)
	Update(ctx context.Context, b *entity.Board) error
	SoftDelete(ctx context.Context, id int64, updatedBy string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	Update(ctx context.Context, c *entity.Comment) error
	SoftDelete(ctx context.Context, id int64, updatedBy string) error
	SoftDeleteByBoard(ctx context.Context, boardID int64, updatedBy string) (int64, error)
}

// FileRepository persists attachment metadata rows.
type FileRepository interface {
	Insert(ctx context.Context, a *entity.Attachment) error
	GetByID(ctx context.Context, id int64) (*entity.Attachment, error)
	ListByBoard(ctx context.Context, boardID int64) ([]entity.Attachment, error)
	// SoftDelete only matches a row attached to boardID.
	SoftDelete(ctx context.Context, id, boardID int64, updatedBy string) error
	SoftDeleteByBoard(ctx context.Context, boardID int64, updatedBy string) (int64, error)
}
