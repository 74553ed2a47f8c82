package flows

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/domain/registration"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/session"
)

const (
	msgValidationTitle   = "Form Validation Failed"
	msgValidationGeneric = "Please check the form for errors."
	msgLoginRequired     = "You must be logged in to register."
	msgRegistrationRetry = "Registration failed. Please try again."
	msgRegistrationDone  = "Registration successful! See you at IMPACT 2026!"
)

type RegistrationSubmitter interface {
	SubmitRegistration(ctx context.Context, token string, form registration.Form) (backend.Ack, error)
}

type RegistrationConfig struct {
	PreselectedEvent string
	Logger           *slog.Logger
	Metrics          OutcomeRecorder
	// OnTransition runs with the flow locked; it must not call back into the flow.
	OnTransition func(from, to State)
}

// RegistrationFlow is one registration form instance. The Submitting state
// doubles as its lock: a second Submit while one is in flight does nothing.
type RegistrationFlow struct {
	mu      sync.Mutex
	form    registration.Form
	errs    map[string]string
	state   State
	failure *Failure

	api     RegistrationSubmitter
	tokens  session.TokenSource
	notify  notifications.Notifier
	log     *slog.Logger
	metrics OutcomeRecorder
	onTrans func(from, to State)
}

func NewRegistrationFlow(cfg RegistrationConfig, api RegistrationSubmitter, tokens session.TokenSource, notifier notifications.Notifier) *RegistrationFlow {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	var metrics OutcomeRecorder = nopRecorder{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	}

	return &RegistrationFlow{
		form:    registration.NewForm(cfg.PreselectedEvent),
		errs:    map[string]string{},
		state:   StateIdle,
		api:     api,
		tokens:  tokens,
		notify:  notifier,
		log:     log.With("flow", "registration"),
		metrics: metrics,
		onTrans: cfg.OnTransition,
	}
}

// UpdateField sets one text field and clears that field's error.
func (f *RegistrationFlow) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	field, err := f.form.SetField(name, value)
	if err != nil {
		return err
	}
	delete(f.errs, field)
	return nil
}

// SelectFile stores the chosen payment screenshot.
func (f *RegistrationFlow) SelectFile(u *registration.Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.form.PaymentScreenshot = u
	delete(f.errs, registration.FieldPaymentScreenshot)
}

// Submit validates, then posts the form once. It returns nil on success and
// a *Failure otherwise; the flow stays usable after any failure.
func (f *RegistrationFlow) Submit(ctx context.Context) error {
	f.mu.Lock()

	switch f.state {
	case StateValidating, StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInFlight
	case StateSuccess:
		f.mu.Unlock()
		return ErrAlreadySubmitted
	}

	f.transition(StateValidating)
	f.errs = map[string]string{}
	f.failure = nil
	form := f.form

	if err := registration.Validate(form); err != nil {
		var verrs registration.ValidationErrors
		first := msgValidationGeneric
		if errors.As(err, &verrs) {
			f.errs = verrs.ByField()
			if m := verrs.First(); m != "" {
				first = m
			}
		}
		failure := &Failure{Kind: FailureValidation, Message: first, Err: err}
		f.failure = failure
		invalid := len(f.errs)
		f.transition(StateIdle)
		f.mu.Unlock()

		f.log.InfoContext(ctx, "registration validation failed", "fields", invalid, "first", first)
		f.metrics.RecordOutcome("registration", string(FailureValidation))
		f.notify.Notify(ctx, notifications.ErrorWithDetail(msgValidationTitle, first))
		return failure
	}

	f.transition(StateSubmitting)
	f.mu.Unlock()

	token, err := f.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return f.fail(ctx, &Failure{
				Kind:    FailureAuthMissing,
				Message: msgLoginRequired,
				Err:     errors.Join(ErrAuthMissing, err),
			})
		}
		return f.fail(ctx, &Failure{Kind: FailureServer, Message: msgRegistrationRetry, Err: err})
	}

	ack, err := f.api.SubmitRegistration(ctx, token, form.Normalized())
	if err != nil {
		return f.fail(ctx, submitFailure(err))
	}

	f.mu.Lock()
	f.form = registration.NewForm("")
	f.transition(StateSuccess)
	f.mu.Unlock()

	f.log.InfoContext(ctx, "registration submitted", "event", form.EventName, "server_message", ack.Message)
	f.metrics.RecordOutcome("registration", "success")
	f.notify.Notify(ctx, notifications.Success(msgRegistrationDone))
	return nil
}

func submitFailure(err error) *Failure {
	kind := FailureServer
	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		kind = FailureNetwork
	}

	msg := backend.ServerMessage(err)
	if msg == "" {
		msg = msgRegistrationRetry
	}
	return &Failure{Kind: kind, Message: msg, Err: err}
}

func (f *RegistrationFlow) fail(ctx context.Context, failure *Failure) error {
	f.mu.Lock()
	f.failure = failure
	f.transition(StateIdle)
	f.mu.Unlock()

	f.log.WarnContext(ctx, "registration failed", "kind", string(failure.Kind), "err", failure.Err)
	f.metrics.RecordOutcome("registration", string(failure.Kind))
	f.notify.Notify(ctx, notifications.Error(failure.Message))
	return failure
}

// Reset blanks the form and returns to Idle, e.g. for "Register Another".
func (f *RegistrationFlow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateValidating || f.state == StateSubmitting {
		return ErrSubmitInFlight
	}

	f.form = registration.NewForm("")
	f.errs = map[string]string{}
	f.failure = nil
	f.transition(StateIdle)
	return nil
}

func (f *RegistrationFlow) transition(to State) {
	from := f.state
	if from == to {
		return
	}
	f.state = to
	if f.onTrans != nil {
		f.onTrans(from, to)
	}
}

func (f *RegistrationFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *RegistrationFlow) Form() registration.Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Errors returns the current field-level errors keyed by field name.
func (f *RegistrationFlow) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// LastFailure is nil until a submit fails, and again after success or reset.
func (f *RegistrationFlow) LastFailure() *Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}
