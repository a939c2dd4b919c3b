package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.State == "" {
		u.State = entity.StateActive
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (user_id, password_hash, email, birthdate, gender, admin, state, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, u.UserID, u.PasswordHash, u.Email, u.Birthdate, u.Gender, u.Admin, string(u.State), u.CreatedBy, u.UpdatedBy)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*entity.User, error) {
	u := &entity.User{}
	var state string

	row := r.db.QueryRow(ctx, `
		SELECT user_id, password_hash, email, birthdate, gender, admin, state,
		       created_by, updated_by, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&u.UserID, &u.PasswordHash, &u.Email, &u.Birthdate, &u.Gender, &u.Admin, &state,
		&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.State = entity.State(state)
	return u, nil
}

func (r *UserRepository) ExistsUserID(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, email = $2, birthdate = $3, gender = $4, updated_by = $5, updated_at = $6
		WHERE user_id = $7 AND state = 'active'
	`, u.PasswordHash, u.Email, u.Birthdate, u.Gender, u.UpdatedBy, u.UpdatedAt, u.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, userID, updatedBy string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET state = 'deleted', updated_by = $1, updated_at = NOW()
		WHERE user_id = $2 AND state = 'active'
	`, updatedBy, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
