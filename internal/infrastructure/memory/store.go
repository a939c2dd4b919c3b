// Package memory keeps board data in process memory. It backs local
// development (STORE_DRIVER=memory) and the HTTP scenario tests.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type state struct {
	users    map[string]entity.User
	boards   map[int64]entity.Board
	comments map[int64]entity.Comment
	files    map[int64]entity.Attachment
	paths    map[string]int64
	seq      int64
}

func newState() *state {
	return &state{
		users:    map[string]entity.User{},
		boards:   map[int64]entity.Board{},
		comments: map[int64]entity.Comment{},
		files:    map[int64]entity.Attachment{},
		paths:    map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.boards {
		c.boards[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	for k, v := range s.paths {
		c.paths[k] = v
	}
	c.seq = s.seq
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type root struct {
	mu sync.Mutex
	st *state
}

// Store is an in-memory repository.Store. Transactions work on a copy of the
// data that replaces the shared copy only when fn succeeds.
type Store struct {
	root *root
	tx   *state
}

func NewStore() *Store {
	return &Store{root: &root{st: newState()}}
}

func (s *Store) do(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	return fn(s.root.st)
}

func (s *Store) Users() repository.UserRepository       { return &userRepo{s} }
func (s *Store) Boards() repository.BoardRepository     { return &boardRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }
func (s *Store) Files() repository.FileRepository       { return &fileRepo{s} }

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()

	work := s.root.st.clone()
	if err := fn(&Store{root: s.root, tx: work}); err != nil {
		return err
	}
	s.root.st = work
	return nil
}

var _ repository.Store = (*Store)(nil)
