package memory

import (
	"context"
	"sort"
	"time"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.users[u.UserID]; ok {
			return repository.ErrDuplicate
		}
		if u.State == "" {
			u.State = entity.StateActive
		}
		now := time.Now()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.UserID] = *u
		return nil
	})
}

func (r *userRepo) GetByUserID(_ context.Context, userID string) (*entity.User, error) {
	var out entity.User
	err := r.s.do(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) ExistsUserID(_ context.Context, userID string) (bool, error) {
	var exists bool
	_ = r.s.do(func(st *state) error {
		_, exists = st.users[userID]
		return nil
	})
	return exists, nil
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.users[u.UserID]
		if !ok || !cur.State.IsActive() {
			return repository.ErrNotFound
		}
		u.UpdatedAt = time.Now()
		cur.PasswordHash, cur.Email, cur.Birthdate, cur.Gender = u.PasswordHash, u.Email, u.Birthdate, u.Gender
		cur.UpdatedBy, cur.UpdatedAt = u.UpdatedBy, u.UpdatedAt
		st.users[u.UserID] = cur
		return nil
	})
}

func (r *userRepo) SoftDelete(_ context.Context, userID, updatedBy string) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.users[userID]
		if !ok || cur.State.MarkDeleted() != nil {
			return repository.ErrNotFound
		}
		cur.UpdatedBy, cur.UpdatedAt = updatedBy, time.Now()
		st.users[userID] = cur
		return nil
	})
}

type boardRepo struct{ s *Store }

func (r *boardRepo) Create(_ context.Context, b *entity.Board) error {
	return r.s.do(func(st *state) error {
		b.ID = st.nextID()
		b.State = entity.StateActive
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now
		st.boards[b.ID] = *b
		return nil
	})
}

func (r *boardRepo) GetByID(_ context.Context, id int64) (*entity.Board, error) {
	var out entity.Board
	err := r.s.do(func(st *state) error {
		b, ok := st.boards[id]
		if !ok || !b.State.IsActive() {
			return repository.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *boardRepo) Update(_ context.Context, b *entity.Board) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.boards[b.ID]
		if !ok || !cur.State.IsActive() {
			return repository.ErrNotFound
		}
		b.UpdatedAt = time.Now()
		cur.Title, cur.Content, cur.UpdatedBy, cur.UpdatedAt = b.Title, b.Content, b.UpdatedBy, b.UpdatedAt
		st.boards[b.ID] = cur
		return nil
	})
}

func (r *boardRepo) SoftDelete(_ context.Context, id int64, updatedBy string) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.boards[id]
		if !ok || cur.State.MarkDeleted() != nil {
			return repository.ErrNotFound
		}
		cur.UpdatedBy, cur.UpdatedAt = updatedBy, time.Now()
		st.boards[id] = cur
		return nil
	})
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, c *entity.Comment) error {
	return r.s.do(func(st *state) error {
		c.ID = st.nextID()
		c.State = entity.StateActive
		now := time.Now()
		c.CreatedAt, c.UpdatedAt = now, now
		st.comments[c.ID] = *c
		return nil
	})
}

func (r *commentRepo) GetByID(_ context.Context, id int64) (*entity.Comment, error) {
	var out entity.Comment
	err := r.s.do(func(st *state) error {
		c, ok := st.comments[id]
		if !ok || !c.State.IsActive() {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *commentRepo) Update(_ context.Context, c *entity.Comment) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.comments[c.ID]
		if !ok || !cur.State.IsActive() {
			return repository.ErrNotFound
		}
		c.UpdatedAt = time.Now()
		cur.Content, cur.UpdatedBy, cur.UpdatedAt = c.Content, c.UpdatedBy, c.UpdatedAt
		st.comments[c.ID] = cur
		return nil
	})
}

func (r *commentRepo) SoftDelete(_ context.Context, id int64, updatedBy string) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.comments[id]
		if !ok || cur.State.MarkDeleted() != nil {
			return repository.ErrNotFound
		}
		cur.UpdatedBy, cur.UpdatedAt = updatedBy, time.Now()
		st.comments[id] = cur
		return nil
	})
}

func (r *commentRepo) SoftDeleteByBoard(_ context.Context, boardID int64, updatedBy string) (int64, error) {
	var n int64
	err := r.s.do(func(st *state) error {
		now := time.Now()
		for id, c := range st.comments {
			if c.BoardID != boardID || c.State.MarkDeleted() != nil {
				continue
			}
			c.UpdatedBy, c.UpdatedAt = updatedBy, now
			st.comments[id] = c
			n++
		}
		return nil
	})
	return n, err
}

type fileRepo struct{ s *Store }

func (r *fileRepo) Insert(_ context.Context, a *entity.Attachment) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.paths[a.StoredPath]; ok {
			return repository.ErrDuplicate
		}
		a.ID = st.nextID()
		a.State = entity.StateActive
		a.CreatedAt = time.Now()
		st.files[a.ID] = *a
		st.paths[a.StoredPath] = a.ID
		return nil
	})
}

func (r *fileRepo) GetByID(_ context.Context, id int64) (*entity.Attachment, error) {
	var out entity.Attachment
	err := r.s.do(func(st *state) error {
		a, ok := st.files[id]
		if !ok || !a.State.IsActive() {
			return repository.ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *fileRepo) ListByBoard(_ context.Context, boardID int64) ([]entity.Attachment, error) {
	var out []entity.Attachment
	_ = r.s.do(func(st *state) error {
		for _, a := range st.files {
			if a.BoardID == boardID && a.State.IsActive() {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fileRepo) SoftDelete(_ context.Context, id, boardID int64, updatedBy string) error {
	return r.s.do(func(st *state) error {
		cur, ok := st.files[id]
		if !ok || cur.BoardID != boardID || cur.State.MarkDeleted() != nil {
			return repository.ErrNotFound
		}
		cur.UpdatedBy = updatedBy
		st.files[id] = cur
		return nil
	})
}

func (r *fileRepo) SoftDeleteByBoard(_ context.Context, boardID int64, updatedBy string) (int64, error) {
	var n int64
	err := r.s.do(func(st *state) error {
		for id, a := range st.files {
			if a.BoardID != boardID || a.State.MarkDeleted() != nil {
				continue
			}
			a.UpdatedBy = updatedBy
			st.files[id] = a
			n++
		}
		return nil
	})
	return n, err
}
