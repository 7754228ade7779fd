package session

import (
	"context"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// Store holds WebAuthn ceremony state between the begin and finish calls.
// Registration is keyed by invite token, login by a throwaway session id.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

func regKey(token string) string { return k("webauthn", "reg", token) }
func authKey(sid string) string  { return k("webauthn", "auth", sid) }

func (s *Store) SaveReg(ctx context.Context, token string, sd *webauthn.SessionData) error {
	return putJSON(ctx, s.rdb, regKey(token), sd, s.ttl)
}

func (s *Store) LoadReg(ctx context.Context, token string) (*webauthn.SessionData, error) {
	return getJSON[webauthn.SessionData](ctx, s.rdb, regKey(token))
}

func (s *Store) DelReg(ctx context.Context, token string) { _ = s.rdb.Del(ctx, regKey(token)).Err() }

func (s *Store) SaveAuth(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return putJSON(ctx, s.rdb, authKey(sid), sd, s.ttl)
}

func (s *Store) LoadAuth(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return getJSON[webauthn.SessionData](ctx, s.rdb, authKey(sid))
}

func (s *Store) DelAuth(ctx context.Context, sid string) { _ = s.rdb.Del(ctx, authKey(sid)).Err() }
