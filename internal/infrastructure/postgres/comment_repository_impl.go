package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	c.State = entity.StateActive
	row := r.db.QueryRow(ctx, `
		INSERT INTO comments (board_id, content, state, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.BoardID, c.Content, string(c.State), c.CreatedBy, c.UpdatedBy)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	c := &entity.Comment{}
	var state string

	row := r.db.QueryRow(ctx, `
		SELECT id, board_id, content, state, created_by, updated_by, created_at, updated_at
		FROM comments
		WHERE id = $1 AND state = 'active'
	`, id)

	if err := row.Scan(&c.ID, &c.BoardID, &c.Content, &state, &c.CreatedBy, &c.UpdatedBy,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	c.State = entity.State(state)
	return c, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *entity.Comment) error {
	c.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE comments
		SET content = $1, updated_by = $2, updated_at = $3
		WHERE id = $4 AND state = 'active'
	`, c.Content, c.UpdatedBy, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id int64, updatedBy string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE comments
		SET state = 'deleted', updated_by = $1, updated_at = NOW()
		WHERE id = $2 AND state = 'active'
	`, updatedBy, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) SoftDeleteByBoard(ctx context.Context, boardID int64, updatedBy string) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE comments
		SET state = 'deleted', updated_by = $1, updated_at = NOW()
		WHERE board_id = $2 AND state = 'active'
	`, updatedBy, boardID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
