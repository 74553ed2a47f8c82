package flows

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/session"
)

const (
	msgAdminSignedIn = "Admin login successful"
	msgAdminFailed   = "Login failed. Please check credentials."
	msgAdminMissing  = "Email and password are required."
)

var ErrCredentialsMissing = errors.New("email and password are required")

type AdminAuthenticator interface {
	AdminSignIn(ctx context.Context, email, password string) (string, error)
}

// AdminLogin signs an organiser in and keeps the token under admin_token.
type AdminLogin struct {
	mu   sync.Mutex
	busy bool

	api     AdminAuthenticator
	tokens  session.TokenStore
	notify  notifications.Notifier
	log     *slog.Logger
	metrics OutcomeRecorder
}

func NewAdminLogin(api AdminAuthenticator, tokens session.TokenStore, notifier notifications.Notifier, log *slog.Logger, metrics OutcomeRecorder) *AdminLogin {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &AdminLogin{
		api:     api,
		tokens:  tokens,
		notify:  notifier,
		log:     log.With("flow", "admin_login"),
		metrics: metrics,
	}
}

func (a *AdminLogin) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		a.notify.Notify(ctx, notifications.Error(msgAdminMissing))
		return &Failure{Kind: FailureValidation, Message: msgAdminMissing, Err: ErrCredentialsMissing}
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrSubmitInFlight
	}
	a.busy = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	token, err := a.api.AdminSignIn(ctx, email, password)
	if err == nil {
		err = a.tokens.SetToken(ctx, token)
	}
	if err != nil {
		a.log.WarnContext(ctx, "admin sign-in failed", "err", err)

		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = msgAdminFailed
		}
		kind := FailureServer
		var netErr *backend.NetworkError
		if errors.As(err, &netErr) {
			kind = FailureNetwork
		}

		a.metrics.RecordOutcome("admin_login", string(kind))
		a.notify.Notify(ctx, notifications.Error(msg))
		return &Failure{Kind: kind, Message: msg, Err: err}
	}

	a.log.InfoContext(ctx, "admin signed in", "email", email)
	a.metrics.RecordOutcome("admin_login", "success")
	a.notify.Notify(ctx, notifications.Success(msgAdminSignedIn))
	return nil
}
