// Package session holds the bearer tokens a visitor has signed in with.
// Flows never touch a store directly; they receive a TokenSource scoped to
// one session and one key.
package session

import (
	"context"
	"errors"
	"strings"
)

// Well-known token keys.
const (
	KeyUserToken  = "token"
	KeyAdminToken = "admin_token"
)

var ErrNoToken = errors.New("no token stored")

type Store interface {
	Get(ctx context.Context, sid, key string) (string, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid, key string) error
}

// TokenSource is the read/clear view a flow gets of a stored token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

type TokenStore interface {
	TokenSource
	SetToken(ctx context.Context, token string) error
}

type Scoped struct {
	store Store
	sid   string
	key   string
}

func Scope(store Store, sid, key string) *Scoped {
	return &Scoped{store: store, sid: sid, key: key}
}

// Token returns ErrNoToken when nothing (or only blank text) is stored.
func (s *Scoped) Token(ctx context.Context) (string, error) {
	tok, err := s.store.Get(ctx, s.sid, s.key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tok) == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func (s *Scoped) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.sid, s.key, token)
}

func (s *Scoped) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, s.sid, s.key)
}
