package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-board/internal/domain/repository"
)

// AuthService binds sessions to identities.
type AuthService struct {
	Users    repo.UserRepository
	Sessions repo.SessionStore
	Hasher   PasswordHasher
	TTL      time.Duration
	Logger   *logrus.Logger

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.UserRepository, sessions repo.SessionStore, hasher PasswordHasher, ttl time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Sessions: sessions,
		Hasher:   hasher,
		TTL:      ttl,
		Logger:   logger,
		now:      time.Now,
	}
}

// burnCompare spends one hash comparison so an unknown user id costs the
// same as a wrong password.
func (s *AuthService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("board-timing-equalizer")
	})
	if s.dummyHash != "" {
		_, _ = s.Hasher.Verify(password, s.dummyHash)
	}
}

// Login verifies the credentials and opens a new session. currentSessionID,
// when set, is destroyed first so a connection never holds two sessions.
func (s *AuthService) Login(ctx context.Context, currentSessionID, userID, password string) (*entity.Session, error) {
	u, err := s.Users.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.Persistence("load user", err)
	}
	if u == nil || !u.State.IsActive() {
		s.burnCompare(password)
		metricLoginFailure.Add(1)
		return nil, apperr.ErrInvalidCredentials
	}

	ok, err := s.Hasher.Verify(password, u.PasswordHash)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("password verify failed")
		return nil, apperr.Wrap(apperr.KindInternal, "verify password", err)
	}
	if !ok {
		metricLoginFailure.Add(1)
		return nil, apperr.ErrInvalidCredentials
	}

	if currentSessionID != "" {
		if err := s.Sessions.Delete(ctx, currentSessionID); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "destroy previous session", err)
		}
	}

	now := s.now()
	sess := &entity.Session{
		ID:        uuid.NewString(),
		Identity:  u.Identity(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create session", err)
	}
	// The account may have been deleted while the session was being opened.
	if cur, err := s.Users.GetByUserID(ctx, userID); err != nil || !cur.State.IsActive() {
		_ = s.Sessions.Delete(ctx, sess.ID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Persistence("reload user", err)
		}
		metricLoginFailure.Add(1)
		return nil, apperr.ErrInvalidCredentials
	}
	metricLoginSuccess.Add(1)
	s.Logger.WithField("user_id", userID).Info("user logged in")
	return sess, nil
}

// Logout destroys the session. Unknown or empty ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "destroy session", err)
	}
	return nil
}

// Resolve returns the identity bound to sessionID, or nil for an anonymous
// request. The store is consulted on every call.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*entity.Identity, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "load session", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, sessionID)
		return nil, nil
	}
	id := sess.Identity
	return &id, nil
}

func (s *AuthService) TerminateAll(ctx context.Context, userID string) error {
	if err := s.Sessions.DeleteByUser(ctx, userID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "terminate sessions", err)
	}
	return nil
}

var _ SessionTerminator = (*AuthService)(nil)
