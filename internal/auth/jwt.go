package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"locationShare/models"
)

// Principal represents the authenticated caller of a request.
type Principal struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// TokenSigner wraps session IDs in HS256 tokens so that a forged or altered
// cookie is rejected before the session store is consulted.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner returns a signer for the given secret.
func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &TokenSigner{secret: []byte(secret)}, nil
}

// Sign returns a token carrying sessionID that expires at expiresAt.
func (s *TokenSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a token and extracts the session ID.
func (s *TokenSigner) Parse(tokenStr string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return "", err
	}
	c, _ := tok.Claims.(*jwt.RegisteredClaims)
	if c == nil || c.ID == "" {
		return "", errors.New("invalid claims")
	}
	return c.ID, nil
}
