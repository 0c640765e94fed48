// Package auth issues and verifies the bearer tokens that unlock the higher
// request limits. Authentication is optional: anonymous callers are served
// with tighter seminar bounds, invalid credentials are rejected outright.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/symposium-ai/symposium/logging"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail signature or claim
// validation.
var ErrInvalidToken = errors.New("invalid authentication credentials")

// User identifies an authenticated caller.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and validates HS256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time
}

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	// TTL overrides the token lifetime.
	TTL    time.Duration
	Logger logging.Logger
	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// NewManager creates a token manager with the given signing secret.
func NewManager(secret string, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		TTL:    DefaultTokenTTL,
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    opts.TTL,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// Issue creates a signed token for the user.
func (m *Manager) Issue(user User) (string, error) {
	now := m.now()
	claims := Claims{
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the user it identifies.
func (m *Manager) Verify(tokenString string) (*User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		m.logger.Warn("token validation failed", "error", err)
		return nil, ErrInvalidToken
	}
	return &User{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

type contextKey struct{}

// UserFrom extracts the authenticated user from a request context, if any.
func UserFrom(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextKey{}).(*User)
	return user, ok
}

// Middleware resolves an optional bearer token. Requests without an
// Authorization header pass through anonymously; requests with a bad token
// are rejected with 401.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}
		user, err := m.Verify(tokenString)
		if err != nil {
			http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
