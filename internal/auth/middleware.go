package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"locationShare/internal/logging"
)

// ErrNoPrincipal is returned when a request carries no valid session.
var ErrNoPrincipal = errors.New("missing principal")

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionManager issues, resolves and destroys cookie-backed sessions.
type SessionManager struct {
	store  SessionStore
	signer *TokenSigner
	cfg    SessionConfig
	now    func() time.Time
}

// NewSessionManager wires a session store and cookie signer together.
func NewSessionManager(store SessionStore, signer *TokenSigner, cfg SessionConfig) *SessionManager {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &SessionManager{store: store, signer: signer, cfg: cfg, now: time.Now}
}

// Establish starts a new session for p and sets the cookie on w.
// A session already attached to r is destroyed first so the token is never reused.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, p Principal) error {
	if old, ok := m.token(r); ok {
		if err := m.store.Destroy(r.Context(), old); err != nil {
			return fmt.Errorf("destroy previous session: %w", err)
		}
	}
	token, err := NewSessionToken()
	if err != nil {
		return err
	}
	now := m.now()
	s := &Session{Token: token, User: p, CreatedAt: now, ExpiresAt: now.Add(m.cfg.TTL)}
	if err := m.store.Set(r.Context(), s); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	signed, err := m.signer.Sign(token, s.ExpiresAt)
	if err != nil {
		_ = m.store.Destroy(r.Context(), token)
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, m.cookie(signed, s.ExpiresAt))
	return nil
}

// Destroy ends the session attached to r, if any, and expires the cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	if token, ok := m.token(r); ok {
		if err := m.store.Destroy(r.Context(), token); err != nil {
			return err
		}
	}
	c := m.cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	return nil
}

// Authenticate resolves the session cookie and stores the principal in the
// request context. Requests without a usable session pass through unchanged.
func (m *SessionManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.token(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		s, err := m.store.Get(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}
		m.refresh(w, r, s)
		p := s.User
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), &p)))
	})
}

// refresh extends a session once less than half of its TTL remains and
// reissues the cookie with the new expiry.
func (m *SessionManager) refresh(w http.ResponseWriter, r *http.Request, s *Session) {
	now := m.now()
	if s.ExpiresAt.Sub(now) > m.cfg.TTL/2 {
		return
	}
	s.ExpiresAt = now.Add(m.cfg.TTL)
	signed, err := m.signer.Sign(s.Token, s.ExpiresAt)
	if err == nil {
		err = m.store.Set(r.Context(), s)
	}
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("session refresh failed")
		return
	}
	http.SetCookie(w, m.cookie(signed, s.ExpiresAt))
}

// token extracts and verifies the session token from the request cookie.
func (m *SessionManager) token(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := m.signer.Parse(c.Value)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected session cookie")
		return "", false
	}
	return id, true
}

func (m *SessionManager) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RequirePrincipal returns the request principal or ErrNoPrincipal.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoPrincipal
	}
	return p, nil
}
