// Package session keeps logged-in console operators in memory. Each session
// owns the backend credential and its own reconciliation engine.
package session

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/reconcile"
	"github.com/google/uuid"
)

// Session is one admin's console state.
type Session struct {
	ID        string
	Token     string
	Admin     models.AdminIdentity
	CreatedAt time.Time
	ExpiresAt time.Time
	Engine    *reconcile.Engine

	// CSRFToken must be echoed in X-CSRF-Token on every mutating request.
	CSRFToken string

	mu         sync.Mutex
	page       int
	totalPages int
}

// Page returns the last loaded page and the backend's page count.
func (s *Session) Page() (page, totalPages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.totalPages
}

// SetPage records the page that was just loaded into the engine.
func (s *Session) SetPage(page, totalPages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.totalPages = totalPages
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store is a concurrency-safe in-memory session table.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store whose sessions live at most ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for admin. A non-zero tokenExpiry earlier than the
// store TTL caps the session lifetime.
func (s *Store) Create(token string, admin models.AdminIdentity, tokenExpiry time.Time) *Session {
	now := s.now()
	expires := now.Add(s.ttl)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expires) {
		expires = tokenExpiry
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Admin:     admin,
		CreatedAt: now,
		ExpiresAt: expires,
		Engine:    reconcile.NewEngine(),
		CSRFToken: rand.Text(),
		page:      1,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a live session. Expired sessions are removed and reported as
// models.ErrSessionExpired; unknown ids as models.ErrUnauthorized.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, models.ErrUnauthorized
	}
	if sess.Expired(s.now()) {
		s.Delete(id)
		return nil, models.ErrSessionExpired
	}
	return sess, nil
}

// Delete ends a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// DeleteExpired removes every expired session and returns how many it removed.
func (s *Store) DeleteExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
