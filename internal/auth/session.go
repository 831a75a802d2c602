// File: internal/auth/session.go
package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionState is the explicit per-identity session object that replaces the
// loose client-side flags of the original product. It is written on every
// successful landing decision and removed atomically on sign-out.
type SessionState struct {
	OnboardingComplete bool
	IsAdmin            bool
	PreferredLang      string
}

// SessionStore holds session state keyed by identity UID.
type SessionStore interface {
	Put(identityUID string, state SessionState)
	Get(identityUID string) (SessionState, bool)
	Invalidate(identityUID string)
}

// InMemorySessionStore is an expiring in-memory implementation of SessionStore.
type InMemorySessionStore struct {
	cache *cache.Cache
}

var _ SessionStore = (*InMemorySessionStore)(nil)

// NewInMemorySessionStore creates a session store whose entries expire after
// ttl of inactivity-free lifetime.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		cache: cache.New(ttl, ttl/2),
	}
}

func (s *InMemorySessionStore) Put(identityUID string, state SessionState) {
	s.cache.Set(identityUID, state, cache.DefaultExpiration)
}

func (s *InMemorySessionStore) Get(identityUID string) (SessionState, bool) {
	v, found := s.cache.Get(identityUID)
	if !found {
		return SessionState{}, false
	}
	state, ok := v.(SessionState)
	if !ok {
		return SessionState{}, false
	}
	return state, true
}

func (s *InMemorySessionStore) Invalidate(identityUID string) {
	s.cache.Delete(identityUID)
}
