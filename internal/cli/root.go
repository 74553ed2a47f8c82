// Package cli is festctl: the festival site's flows from a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/config"
	"github.com/geocoder89/impactfest/internal/db"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/observability"
	"github.com/geocoder89/impactfest/internal/repo/postgres"
	"github.com/geocoder89/impactfest/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// localSession is the only session a terminal has.
const localSession = "local"

var version = "dev"

type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
}

// NewRootCmd builds the command tree. Output goes to out, logs and errors to
// errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "festctl",
		Short:         "Register for IMPACT 2026 events from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.String("backend", "", "festival API base URL (env BACKEND_BASE_URL)")
	pf.Duration("timeout", 0, "HTTP timeout, 0 for none (env HTTP_TIMEOUT)")
	pf.String("session-file", "", "where tokens are kept (env SESSION_FILE)")
	pf.String("log-level", "quiet", "log verbosity: quiet, info or dev")

	_ = a.v.BindPFlag("BACKEND_BASE_URL", pf.Lookup("backend"))
	_ = a.v.BindPFlag("HTTP_TIMEOUT", pf.Lookup("timeout"))
	_ = a.v.BindPFlag("SESSION_FILE", pf.Lookup("session-file"))
	_ = a.v.BindPFlag("LOG_LEVEL", pf.Lookup("log-level"))

	root.AddCommand(
		a.eventsCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.profileCmd(),
		a.adminCmd(),
		a.contactCmd(),
	)
	return root
}

// Execute runs festctl with ctx.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCmd(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) config() (config.Config, error) {
	return config.Load(a.v)
}

func (a *app) logger() *slog.Logger {
	return observability.NewLoggerTo(a.errOut, a.v.GetString("LOG_LEVEL"))
}

func (a *app) store(cfg config.Config) *session.FileStore {
	return session.NewFileStore(cfg.SessionFile)
}

// flowSet wires the backend-facing flows against the session file.
func (a *app) flowSet(cfg config.Config) (*flows.Set, error) {
	if err := cfg.RequireBackend(); err != nil {
		return nil, err
	}
	log := a.logger()

	api := backend.New(backend.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, log)

	return flows.NewSet(localSession, flows.SetDeps{
		API:      api,
		Tokens:   a.store(cfg),
		Notifier: notifications.NewWriterNotifier(a.out),
		Logger:   log,
	}), nil
}

// contactStore opens the contact_messages table; the terminal has no
// in-memory fallback since nothing would ever read it.
func (a *app) contactStore(ctx context.Context, cfg config.Config) (flows.ContactStore, func(), error) {
	if cfg.DBURL == "" {
		return nil, nil, fmt.Errorf("contact needs a database: set DB_URL or DB_HOST")
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return postgres.NewContactMessagesRepo(pool, nil), pool.Close, nil
}
