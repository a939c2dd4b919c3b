package postgres

import (
	"context"

	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

// Store binds the repositories to either the pool or one open transaction.
type Store struct {
	pool Pool
	db   DBTX
	inTx bool
}

func NewStore(pool Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() repository.UserRepository       { return &UserRepository{db: s.db} }
func (s *Store) Boards() repository.BoardRepository     { return &BoardRepository{db: s.db} }
func (s *Store) Comments() repository.CommentRepository { return &CommentRepository{db: s.db} }
func (s *Store) Files() repository.FileRepository       { return &FileRepository{db: s.db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return WithTx(ctx, s.pool, func(tx DBTX) error {
		return fn(&Store{pool: s.pool, db: tx, inTx: true})
	})
}

var _ repository.Store = (*Store)(nil)
