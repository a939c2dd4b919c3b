// Package redisstore keeps sessions in Redis so they survive restarts and
// are shared between API replicas.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

const (
	sessionPrefix   = "board:session:"
	userIndexPrefix = "board:user:sessions:"
)

type sessionRecord struct {
	ID        string          `json:"id"`
	Identity  entity.Identity `json:"identity"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func sessionKey(id string) string       { return sessionPrefix + id }
func userIndexKey(userID string) string { return userIndexPrefix + userID }

func (s *SessionStore) Create(ctx context.Context, sess *entity.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	rec := sessionRecord{ID: sess.ID, Identity: sess.Identity, CreatedAt: sess.CreatedAt, ExpiresAt: sess.ExpiresAt}
	idx := userIndexKey(sess.Identity.UserID)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := helpers.RedisSetJSON(ctx, pipe, sessionKey(sess.ID), rec, ttl); err != nil {
			return err
		}
		pipe.SAdd(ctx, idx, sess.ID)
		// sessions share one TTL, so the newest member expires last
		pipe.Expire(ctx, idx, ttl)
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	var rec sessionRecord
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, sessionKey(id), &rec)
	if err != nil || !ok {
		return nil, err
	}
	sess := &entity.Session{ID: rec.ID, Identity: rec.Identity, CreatedAt: rec.CreatedAt, ExpiresAt: rec.ExpiresAt}
	if sess.Expired(s.now()) {
		return nil, s.Delete(ctx, id)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	var rec sessionRecord
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, sessionKey(id), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, userIndexKey(rec.Identity.UserID), id)
		return nil
	})
	return err
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	idx := userIndexKey(userID)
	ids, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, idx)
	return helpers.RedisDel(ctx, s.rdb, keys...)
}

var _ repository.SessionStore = (*SessionStore)(nil)
