package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// AppSessionStore maps the app_session cookie to a user. Each user also has
// a set of live session ids so deleting a user can revoke them all.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (s *AppSessionStore) TTL() time.Duration { return s.ttl }

func sessKey(id string) string      { return k("sess", id) }
func userSessKey(uid string) string { return k("user_sessions", uid) }

func (s *AppSessionStore) Create(ctx context.Context, id, userID string) error {
	now := time.Now()
	as := AppSession{UserID: userID, IssuedAt: now.Unix(), ExpiresAt: now.Add(s.ttl).Unix()}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := putJSON(ctx, pipe, sessKey(id), as, s.ttl); err != nil {
			return err
		}
		pipe.SAdd(ctx, userSessKey(userID), id)
		pipe.Expire(ctx, userSessKey(userID), s.ttl)
		return nil
	})
	return err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	return getJSON[AppSession](ctx, s.rdb, sessKey(id))
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessKey(id))
		if as != nil {
			pipe.SRem(ctx, userSessKey(as.UserID), id)
		}
		return nil
	})
	return err
}

// RevokeAllForUser drops every session of a user, used when the user is deleted.
func (s *AppSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSessKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, sid := range ids {
			pipe.Del(ctx, sessKey(sid))
		}
		pipe.Del(ctx, userSessKey(userID))
		return nil
	})
	return err
}
