package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type FileRepository struct {
	db DBTX
}

func NewFileRepository(db DBTX) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `id, board_id, stored_path, display_name, content_type, size, state, created_by, updated_by, created_at`

func (r *FileRepository) Insert(ctx context.Context, a *entity.Attachment) error {
	a.State = entity.StateActive
	row := r.db.QueryRow(ctx, `
		INSERT INTO post_files (board_id, stored_path, display_name, content_type, size, state, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, a.BoardID, a.StoredPath, a.DisplayName, a.ContentType, a.Size, string(a.State), a.CreatedBy, a.UpdatedBy)

	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM post_files WHERE id = $1 AND state = 'active'`, id)
	a, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *FileRepository) ListByBoard(ctx context.Context, boardID int64) ([]entity.Attachment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+fileColumns+`
		FROM post_files
		WHERE board_id = $1 AND state = 'active'
		ORDER BY id
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *FileRepository) SoftDelete(ctx context.Context, id, boardID int64, updatedBy string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE post_files
		SET state = 'deleted', updated_by = $1, updated_at = NOW()
		WHERE id = $2 AND board_id = $3 AND state = 'active'
	`, updatedBy, id, boardID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FileRepository) SoftDeleteByBoard(ctx context.Context, boardID int64, updatedBy string) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE post_files
		SET state = 'deleted', updated_by = $1, updated_at = NOW()
		WHERE board_id = $2 AND state = 'active'
	`, updatedBy, boardID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func scanAttachment(row pgx.Row) (*entity.Attachment, error) {
	a := &entity.Attachment{}
	var state string
	if err := row.Scan(&a.ID, &a.BoardID, &a.StoredPath, &a.DisplayName, &a.ContentType, &a.Size,
		&state, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.State = entity.State(state)
	return a, nil
}

var _ repository.FileRepository = (*FileRepository)(nil)
