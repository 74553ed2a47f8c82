package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeSession = "session"

var ErrInvalidSession = errors.New("invalid session cookie")

// Claims identify a browser session. The bearer tokens themselves never leave
// the server; the cookie carries only the session id.
type Claims struct {
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue mints a cookie value for a fresh session id.
func (m *Manager) Issue() (raw string, sid string, err error) {
	sid = uuid.NewString()
	raw, err = m.IssueFor(sid)
	return
}

// IssueFor re-signs an existing session id, extending its lifetime.
func (m *Manager) IssueFor(sid string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		SessionID: sid,
		TokenType: tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   sid,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns the session id of a valid, unexpired cookie value.
func (m *Manager) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.TokenType != tokenTypeSession || claims.SessionID == "" {
		return "", ErrInvalidSession
	}
	return claims.SessionID, nil
}
