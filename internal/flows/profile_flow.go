package flows

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/domain/user"
	"github.com/geocoder89/impactfest/internal/session"
)

const (
	msgProfileLogin   = "Please log in to view your profile."
	msgProfileExpired = "Session expired. Please log in again."
	msgProfileRetry   = "Could not load profile. Please try again later."
)

type ProfileOutcome string

const (
	ProfileLoaded       ProfileOutcome = "loaded"
	ProfileAccessDenied ProfileOutcome = "access_denied"
	ProfileUnauthorized ProfileOutcome = "unauthorized"
	ProfileError        ProfileOutcome = "error"
)

type ProfileResult struct {
	Outcome ProfileOutcome `json:"outcome"`
	Profile *user.Profile  `json:"profile,omitempty"`
	Message string         `json:"message,omitempty"`
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (user.Profile, error)
}

// ProfileFetch loads the signed-in participant's profile once per call.
type ProfileFetch struct {
	api     ProfileFetcher
	tokens  session.TokenSource
	log     *slog.Logger
	metrics OutcomeRecorder
}

func NewProfileFetch(api ProfileFetcher, tokens session.TokenSource, log *slog.Logger, metrics OutcomeRecorder) *ProfileFetch {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ProfileFetch{
		api:     api,
		tokens:  tokens,
		log:     log.With("flow", "profile"),
		metrics: metrics,
	}
}

func (p *ProfileFetch) Load(ctx context.Context) ProfileResult {
	res := p.load(ctx)
	p.metrics.RecordOutcome("profile", string(res.Outcome))
	return res
}

func (p *ProfileFetch) load(ctx context.Context) ProfileResult {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			p.log.ErrorContext(ctx, "read token failed", "err", err)
			return ProfileResult{Outcome: ProfileError, Message: msgProfileRetry}
		}
		return ProfileResult{Outcome: ProfileAccessDenied, Message: msgProfileLogin}
	}

	prof, err := p.api.FetchProfile(ctx, token)
	if err == nil {
		return ProfileResult{Outcome: ProfileLoaded, Profile: &prof}
	}

	p.log.WarnContext(ctx, "profile fetch failed", "err", err)

	if errors.Is(err, backend.ErrUnauthorized) {
		if cerr := p.tokens.ClearToken(ctx); cerr != nil {
			p.log.ErrorContext(ctx, "clear token failed", "err", cerr)
		}
		return ProfileResult{Outcome: ProfileUnauthorized, Message: msgProfileExpired}
	}

	// a 2xx {success:false} carries its own explanation
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 300 && apiErr.Message != "" {
		return ProfileResult{Outcome: ProfileError, Message: apiErr.Message}
	}

	return ProfileResult{Outcome: ProfileError, Message: msgProfileRetry}
}
