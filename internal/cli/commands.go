package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/geocoder89/impactfest/internal/domain/event"
	"github.com/geocoder89/impactfest/internal/domain/registration"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/session"
	"github.com/spf13/cobra"
)

// ErrReported marks a failure the user has already been told about.
var ErrReported = errors.New("reported")

func (a *app) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the events open for registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, name := range event.Catalogue {
				fmt.Fprintf(a.out, "%2d. %s\n", i+1, name)
			}
			return nil
		},
	}
}

func (a *app) loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token issued by the festival site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			tokens := session.Scope(a.store(cfg), localSession, session.KeyUserToken)
			if err := tokens.SetToken(cmd.Context(), token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			fmt.Fprintln(a.out, "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored participant and admin tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			store := a.store(cfg)
			for _, key := range []string{session.KeyUserToken, session.KeyAdminToken} {
				if err := store.Delete(cmd.Context(), localSession, key); err != nil {
					return fmt.Errorf("clear %s: %w", key, err)
				}
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	fields := map[string]*string{}
	var screenshot string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a team for an event",
		Long: `Register a team for an event. Requires a stored token (festctl login).

Example:
  festctl register --event "Hackathon" --full-name "Asha Verma" \
    --email asha@example.com --phone 9876543210 --college "City College" \
    --team-name "Null Pointers" --team-size 3 --transaction-id TXN_42 \
    --screenshot ./payment.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			set, err := a.flowSet(cfg)
			if err != nil {
				return err
			}
			flow := set.Registration

			for name, value := range fields {
				if err := flow.UpdateField(name, *value); err != nil {
					return err
				}
			}
			if screenshot != "" {
				u, err := registration.OpenUpload(screenshot)
				if err != nil {
					return err
				}
				flow.SelectFile(u)
			}

			err = flow.Submit(cmd.Context())
			if err == nil {
				return nil
			}

			var failure *flows.Failure
			if errors.As(err, &failure) {
				if failure.Kind == flows.FailureValidation {
					errs := flow.Errors()
					for _, name := range registration.FieldNames {
						if msg, ok := errs[name]; ok {
							fmt.Fprintf(a.errOut, "  %s: %s\n", name, msg)
						}
					}
				}
				return ErrReported
			}
			return err
		},
	}

	f := cmd.Flags()
	flag := func(field, name, usage string) {
		fields[field] = f.String(name, "", usage)
	}
	flag(registration.FieldFullName, "full-name", "participant's full name")
	flag(registration.FieldEmail, "email", "contact email")
	flag(registration.FieldPhone, "phone", "phone number, also the team number")
	flag(registration.FieldCollegeName, "college", "college name")
	flag(registration.FieldEventName, "event", "event name (see festctl events)")
	flag(registration.FieldTeamName, "team-name", "team name")
	flag(registration.FieldTransactionID, "transaction-id", "payment transaction id")
	teamSize := f.Int("team-size", 1, "team size, 1 to 10")
	f.StringVar(&screenshot, "screenshot", "", "payment screenshot (jpg, png or webp, at most 5MB)")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		v := strconv.Itoa(*teamSize)
		fields[registration.FieldTeamSize] = &v
	}
	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your account and registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			set, err := a.flowSet(cfg)
			if err != nil {
				return err
			}

			res := set.Profile.Load(cmd.Context())
			if res.Outcome != flows.ProfileLoaded {
				fmt.Fprintln(a.errOut, res.Message)
				return ErrReported
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Profile)
		},
	}
}

func (a *app) adminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Organiser commands",
	}

	var email, password string
	signin := &cobra.Command{
		Use:   "signin",
		Short: "Sign in as an organiser and keep the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			set, err := a.flowSet(cfg)
			if err != nil {
				return err
			}

			err = set.Admin.SignIn(cmd.Context(), email, password)
			var failure *flows.Failure
			if errors.As(err, &failure) {
				return ErrReported
			}
			return err
		},
	}
	signin.Flags().StringVar(&email, "email", "", "admin email")
	signin.Flags().StringVar(&password, "password", "", "admin password")

	admin.AddCommand(signin)
	return admin
}

func (a *app) contactCmd() *cobra.Command {
	values := map[string]*string{}

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the organisers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			store, closeStore, err := a.contactStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			flow := flows.NewContactFlow(store, notifications.NewWriterNotifier(a.out), a.logger(), nil)
			for name, v := range values {
				if err := flow.UpdateField(name, *v); err != nil {
					return err
				}
			}

			err = flow.Submit(cmd.Context())
			var failure *flows.Failure
			if errors.As(err, &failure) {
				return ErrReported
			}
			return err
		},
	}

	for _, name := range []string{"name", "email", "subject", "message"} {
		values[name] = cmd.Flags().String(name, "", "your "+name)
	}
	return cmd
}
