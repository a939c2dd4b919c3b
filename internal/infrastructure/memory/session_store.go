package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

// SessionStore is a process-local repository.SessionStore.
type SessionStore struct {
	mu     sync.RWMutex
	byID   map[string]entity.Session
	byUser map[string]map[string]struct{}
	now    func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:   map[string]entity.Session{},
		byUser: map[string]map[string]struct{}{},
		now:    time.Now,
	}
}

func (s *SessionStore) Create(_ context.Context, sess *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.ID] = *sess
	ids, ok := s.byUser[sess.Identity.UserID]
	if !ok {
		ids = map[string]struct{}{}
		s.byUser[sess.Identity.UserID] = ids
	}
	ids[sess.ID] = struct{}{}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.Session, error) {
	s.mu.RLock()
	sess, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		s.remove(id)
		s.mu.Unlock()
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.byUser[userID] {
		delete(s.byID, id)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *SessionStore) remove(id string) {
	sess, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if ids := s.byUser[sess.Identity.UserID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byUser, sess.Identity.UserID)
		}
	}
}

var _ repository.SessionStore = (*SessionStore)(nil)
