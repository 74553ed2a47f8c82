package flows

import (
	"log/slog"

	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/session"
)

// Backend is everything the flows need from the festival API.
type Backend interface {
	RegistrationSubmitter
	ProfileFetcher
	AdminAuthenticator
}

type SetDeps struct {
	API      Backend
	Tokens   session.Store
	Contacts ContactStore
	// Notifier receives every notice after the set's own recorder.
	Notifier notifications.Notifier
	Logger   *slog.Logger
	Metrics  OutcomeRecorder
}

// Set is one visitor's flows. Flows in a set share the session's tokens and
// a notice recorder; nothing is shared between sets.
type Set struct {
	SessionID    string
	Registration *RegistrationFlow
	Profile      *ProfileFetch
	Admin        *AdminLogin
	Contact      *ContactFlow
	Notices      *notifications.Recorder
	UserTokens   *session.Scoped
	AdminTokens  *session.Scoped
}

func NewSet(sid string, deps SetDeps) *Set {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("session_id", sid)

	rec := notifications.NewRecorder(deps.Notifier)
	userTokens := session.Scope(deps.Tokens, sid, session.KeyUserToken)
	adminTokens := session.Scope(deps.Tokens, sid, session.KeyAdminToken)

	return &Set{
		SessionID: sid,
		Registration: NewRegistrationFlow(RegistrationConfig{
			Logger:  log,
			Metrics: deps.Metrics,
		}, deps.API, userTokens, rec),
		Profile:     NewProfileFetch(deps.API, userTokens, log, deps.Metrics),
		Admin:       NewAdminLogin(deps.API, adminTokens, rec, log, deps.Metrics),
		Contact:     NewContactFlow(deps.Contacts, rec, log, deps.Metrics),
		Notices:     rec,
		UserTokens:  userTokens,
		AdminTokens: adminTokens,
	}
}
