package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type BoardRepository struct {
	db DBTX
}

func NewBoardRepository(db DBTX) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, b *entity.Board) error {
	b.State = entity.StateActive
	row := r.db.QueryRow(ctx, `
		INSERT INTO boards (title, content, state, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Content, string(b.State), b.CreatedBy, b.UpdatedBy)

	return row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BoardRepository) GetByID(ctx context.Context, id int64) (*entity.Board, error) {
	b := &entity.Board{}
	var state string

	row := r.db.QueryRow(ctx, `
		SELECT id, title, content, state, created_by, updated_by, created_at, updated_at
		FROM boards
		WHERE id = $1 AND state = 'active'
	`, id)

	if err := row.Scan(&b.ID, &b.Title, &b.Content, &state, &b.CreatedBy, &b.UpdatedBy,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	b.State = entity.State(state)
	return b, nil
}

func (r *BoardRepository) Update(ctx context.Context, b *entity.Board) error {
	b.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE boards
		SET title = $1, content = $2, updated_by = $3, updated_at = $4
		WHERE id = $5 AND state = 'active'
	`, b.Title, b.Content, b.UpdatedBy, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BoardRepository) SoftDelete(ctx context.Context, id int64, updatedBy string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE boards
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

var _ repository.BoardRepository = (*BoardRepository)(nil)
