// Package token issues and verifies the stateless HS256 session tokens.
//
// A token carries only the user id and the issue time. It has no exp claim:
// expiry is derived at verification time from the configured session length,
// so changing SESSION_DURATION_MINUTES shortens or extends every outstanding
// token immediately.
package token

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrMissingBearer  = fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	ErrInvalidToken   = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpired        = fmt.Errorf("%w: session expired", ErrUnauthorized)
	ErrEmptySecretKey = errors.New("token signing key is empty")
)

// Claims is the token payload: {"user_id": <int>, "iat": <unix seconds>}.
type Claims struct {
	UserID   int64 `json:"user_id"`
	IssuedAt int64 `json:"iat"`
}

var _ jwt.Claims = Claims{}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

// Config is the process-wide token configuration, read-only after startup.
type Config struct {
	SigningKey             []byte
	SessionDurationMinutes int64
}

// Manager signs and verifies tokens with a fixed key and session length.
type Manager struct {
	key     []byte
	minutes int64
	now     func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrEmptySecretKey
	}
	return &Manager{key: cfg.SigningKey, minutes: cfg.SessionDurationMinutes, now: time.Now}, nil
}

// SessionDuration is the lifetime applied when verifying.
func (m *Manager) SessionDuration() time.Duration {
	return time.Duration(m.minutes) * time.Minute
}

// Issue signs a token for userID stamped with the current time.
func (m *Manager) Issue(userID int64) (string, error) {
	claims := Claims{UserID: userID, IssuedAt: m.now().Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and the derived expiry and returns the claims.
// Every error wraps ErrUnauthorized.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt+m.minutes*60 < m.now().Unix() {
		return nil, ErrExpired
	}
	return &claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingBearer
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingBearer
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", ErrMissingBearer
	}
	return tok, nil
}

// FromRequest runs the whole extraction step for a protected request.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	tok, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return m.Verify(tok)
}
