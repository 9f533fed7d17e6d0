package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a token has no session in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned for a session past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// Session is the server-side record behind a session cookie.
type Session struct {
	Token     string
	User      Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStore is the capability handlers need to manage sessions by token.
type SessionStore interface {
	// Get returns ErrSessionNotFound or ErrSessionExpired when the token is not usable.
	Get(ctx context.Context, token string) (*Session, error)
	// Set creates or replaces the session stored under s.Token.
	Set(ctx context.Context, s *Session) error
	// Destroy removes the session; destroying an unknown token is not an error.
	Destroy(ctx context.Context, token string) error
}

// NewSessionToken returns a random 256-bit hex token.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session), now: time.Now}
}

func (m *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.IsExpired(m.now()) {
		return nil, ErrSessionExpired
	}
	return &s, nil
}

func (m *MemorySessionStore) Set(_ context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return errors.New("session token is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *MemorySessionStore) Destroy(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired removes expired sessions and returns how many were removed.
func (m *MemorySessionStore) CleanupExpired() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for token, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (m *MemorySessionStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}
