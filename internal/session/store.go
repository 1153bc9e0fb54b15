// Package session implements the in-memory expiring session table that
// backs cookie authentication. Sessions live only for the lifetime of
// the process; a restart logs everyone out, which is accepted since
// re-login is cheap.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// CookieName is the session cookie identifier.
const CookieName = "session_token"

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// Session binds an opaque token to the identity cached at login time.
// The fields are a trusted snapshot taken from the user record; they go
// stale until the next login, which is deliberate.
type Session struct {
	Token     string
	UserID    int64
	Role      string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Store is a concurrency-safe token table. Every operation runs under a
// single critical section; the table is small and each op is O(1), so
// one coarse mutex is enough. No I/O happens inside the lock.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewStore returns an empty Store. The table starts empty at process
// start and is simply discarded at teardown.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// TTL exposes the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create issues a new session for the user and returns its token. The
// token carries 256 bits of entropy, so a collision is negligible; if
// one ever happened the newer session would silently overwrite the
// older, a trade-off covered by the non-collision test.
func (s *Store) Create(userID int64, role, name, email string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("session: generate token: %w", err)
	}
	s.mu.Lock()
	s.sessions[token] = Session{
		Token:     token,
		UserID:    userID,
		Role:      role,
		Name:      name,
		Email:     email,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
	return token, nil
}

// Validate looks up a token. An expired entry is removed on the spot
// (lazy expiry, there is no background sweep) and reported as absent.
// Lookup and removal happen under one lock so a concurrent Validate or
// Invalidate can never observe a half-removed entry.
func (s *Store) Validate(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !sess.ExpiresAt.After(s.now()) {
		delete(s.sessions, token)
		return Session{}, false
	}
	return sess, true
}

// Invalidate removes a session if present. Calling it with an unknown
// token is a no-op.
func (s *Store) Invalidate(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len reports the number of live entries, expired ones included until
// their lazy removal.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
