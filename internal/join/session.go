// File: internal/join/session.go
package join

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionStore holds in-flight activation sessions keyed by opaque token.
// Entries expire after the configured TTL so abandoned attempts clean
// themselves up.
type SessionStore interface {
	Put(token string, sess Session)
	Get(token string) (Session, bool)
	Delete(token string)
}

type InMemorySessionStore struct {
	cache *cache.Cache
}

var _ SessionStore = (*InMemorySessionStore)(nil)

func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		cache: cache.New(ttl, ttl/2),
	}
}

func (s *InMemorySessionStore) Put(token string, sess Session) {
	s.cache.Set(token, sess, cache.DefaultExpiration)
}

func (s *InMemorySessionStore) Get(token string) (Session, bool) {
	v, found := s.cache.Get(token)
	if !found {
		return Session{}, false
	}
	sess, ok := v.(Session)
	if !ok {
		return Session{}, false
	}
	return sess, true
}

func (s *InMemorySessionStore) Delete(token string) {
	s.cache.Delete(token)
}
