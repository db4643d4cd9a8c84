package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

// SessionStore keeps the bearer token and the serialized user profile under
// "<namespace>:auth:*". The namespace identifies one installation.
type SessionStore struct {
	c  *redis.Client
	ns string
}

func NewSessionStore(c *redis.Client, namespace string) *SessionStore {
	return &SessionStore{c: c, ns: namespace}
}

func (s *SessionStore) tokenKey() string { return s.ns + ":auth:jwt" }
func (s *SessionStore) userKey() string  { return s.ns + ":auth:user" }

func (s *SessionStore) Load(ctx context.Context) (domain.Session, bool, error) {
	vals, err := s.c.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		return domain.Session{}, false, err
	}
	tok, _ := vals[0].(string)
	if tok == "" {
		observability.ObserveStore("session", "miss")
		return domain.Session{}, false, nil
	}
	sess := domain.Session{Token: tok}
	if raw, ok := vals[1].(string); ok && raw != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return domain.Session{}, false, fmt.Errorf("decode stored user: %w", err)
		}
		sess.User = &u
	}
	observability.ObserveStore("session", "hit")
	return sess, true, nil
}

func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	if sess.Token == "" {
		return errors.New("session token is empty")
	}
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.tokenKey(), sess.Token, 0)
		if sess.User != nil {
			b, err := json.Marshal(sess.User)
			if err != nil {
				return err
			}
			p.Set(ctx, s.userKey(), b, 0)
		} else {
			p.Del(ctx, s.userKey())
		}
		return nil
	})
	observability.ObserveStore("session", "save")
	return err
}

func (s *SessionStore) Clear(ctx context.Context) error {
	observability.ObserveStore("session", "clear")
	return s.c.Del(ctx, s.tokenKey(), s.userKey()).Err()
}
