package flows_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/domain/registration"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/geocoder89/impactfest/internal/session"
	"pgregory.net/rapid"
)

// fakeSubmitter implements flows.RegistrationSubmitter and counts calls.
type fakeSubmitter struct {
	calls    atomic.Int32
	submitFn func(ctx context.Context, token string, form registration.Form) (backend.Ack, error)
}

func (f *fakeSubmitter) SubmitRegistration(ctx context.Context, token string, form registration.Form) (backend.Ack, error) {
	f.calls.Add(1)
	if f.submitFn != nil {
		return f.submitFn(ctx, token, form)
	}
	return backend.Ack{}, nil
}

func tokenSource(t *testing.T, token string) *session.Scoped {
	t.Helper()
	s := session.Scope(session.NewMemoryStore(), "sid", session.KeyUserToken)
	if token != "" {
		if err := s.SetToken(context.Background(), token); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}
	return s
}

var validFields = map[string]string{
	"fullName":      "Asha Verma",
	"email":         "asha@example.com",
	"phone":         "+91 9876543210",
	"collegeName":   "City College",
	"eventName":     "Battle of Bands",
	"teamName":      "The Decibels",
	"teamSize":      "5",
	"transactionId": "TXN_991",
}

func screenshot() *registration.Upload {
	return &registration.Upload{Filename: "pay.jpg", ContentType: "image/jpeg", Size: 2048, Content: []byte{0xff, 0xd8, 0xff}}
}

func fillValid(t *testing.T, f *flows.RegistrationFlow) {
	t.Helper()
	for name, value := range validFields {
		if err := f.UpdateField(name, value); err != nil {
			t.Fatalf("UpdateField(%s): %v", name, err)
		}
	}
	f.SelectFile(screenshot())
}

type transitions struct {
	mu  sync.Mutex
	got []flows.State
}

func (tr *transitions) record(from, to flows.State) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.got) == 0 {
		tr.got = append(tr.got, from)
	}
	tr.got = append(tr.got, to)
}

func (tr *transitions) equal(want ...flows.State) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.got) != len(want) {
		return false
	}
	for i := range want {
		if tr.got[i] != want[i] {
			return false
		}
	}
	return true
}

func newFlow(t *testing.T, api flows.RegistrationSubmitter, token string) (*flows.RegistrationFlow, *notifications.Recorder, *transitions) {
	t.Helper()
	rec := notifications.NewRecorder(nil)
	tr := &transitions{}
	f := flows.NewRegistrationFlow(
		flows.RegistrationConfig{OnTransition: tr.record},
		api,
		tokenSource(t, token),
		rec,
	)
	return f, rec, tr
}

func TestRegistrationFlow_Success(t *testing.T) {
	var gotToken string
	var gotForm registration.Form
	api := &fakeSubmitter{submitFn: func(ctx context.Context, token string, form registration.Form) (backend.Ack, error) {
		gotToken = token
		gotForm = form
		return backend.Ack{}, nil
	}}

	f, rec, tr := newFlow(t, api, "tok-123")
	fillValid(t, f)

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.calls.Load() != 1 {
		t.Fatalf("expected exactly one POST, got %d", api.calls.Load())
	}
	if gotToken != "tok-123" || gotForm.TeamName != "The Decibels" || gotForm.TeamSize != 5 {
		t.Fatalf("unexpected submission: token=%q form=%+v", gotToken, gotForm)
	}
	if f.State() != flows.StateSuccess {
		t.Fatalf("expected success, got %s", f.State())
	}
	if !tr.equal(flows.StateIdle, flows.StateValidating, flows.StateSubmitting, flows.StateSuccess) {
		t.Fatalf("unexpected transitions: %v", tr.got)
	}

	form := f.Form()
	if form.FullName != "" || form.Email != "" || form.Phone != "" || form.CollegeName != "" ||
		form.EventName != "" || form.TeamName != "" || form.TransactionID != "" || form.PaymentScreenshot != nil {
		t.Fatalf("form should be blank after success: %+v", form)
	}

	last, _ := rec.Last()
	if last.Level != notifications.LevelSuccess {
		t.Fatalf("expected success notice, got %+v", last)
	}
}

func TestRegistrationFlow_InvalidFormNeverCallsNetwork(t *testing.T) {
	api := &fakeSubmitter{}
	f, rec, tr := newFlow(t, api, "tok")

	fillValid(t, f)
	_ = f.UpdateField("email", "not-an-email")

	err := f.Submit(context.Background())

	var failure *flows.Failure
	if !errors.As(err, &failure) || failure.Kind != flows.FailureValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if api.calls.Load() != 0 {
		t.Fatalf("network must not be called on invalid form")
	}
	if f.State() != flows.StateIdle {
		t.Fatalf("expected idle, got %s", f.State())
	}
	if !tr.equal(flows.StateIdle, flows.StateValidating, flows.StateIdle) {
		t.Fatalf("unexpected transitions: %v", tr.got)
	}

	errs := f.Errors()
	if errs["email"] != "Invalid email address" || len(errs) != 1 {
		t.Fatalf("unexpected field errors: %v", errs)
	}

	last, _ := rec.Last()
	if last.Title != "Form Validation Failed" || last.Description != "Invalid email address" {
		t.Fatalf("unexpected notice: %+v", last)
	}

	// typing into the field clears its error
	if err := f.UpdateField("email", "a@b.co"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if _, ok := f.Errors()["email"]; ok {
		t.Fatalf("email error should be cleared after edit")
	}
}

func TestRegistrationFlow_SelectFileClearsScreenshotError(t *testing.T) {
	f, _, _ := newFlow(t, &fakeSubmitter{}, "tok")
	for name, value := range validFields {
		_ = f.UpdateField(name, value)
	}

	_ = f.Submit(context.Background())
	if f.Errors()["paymentScreenshot"] != "Payment screenshot is required" {
		t.Fatalf("expected screenshot error, got %v", f.Errors())
	}

	f.SelectFile(screenshot())
	if len(f.Errors()) != 0 {
		t.Fatalf("screenshot error should be cleared: %v", f.Errors())
	}
}

func TestRegistrationFlow_ServerRejection(t *testing.T) {
	api := &fakeSubmitter{submitFn: func(ctx context.Context, token string, form registration.Form) (backend.Ack, error) {
		return backend.Ack{}, &backend.APIError{Status: 200, Message: "Duplicate transaction"}
	}}
	f, rec, tr := newFlow(t, api, "tok")
	fillValid(t, f)

	err := f.Submit(context.Background())

	var failure *flows.Failure
	if !errors.As(err, &failure) || failure.Kind != flows.FailureServer {
		t.Fatalf("expected server failure, got %v", err)
	}
	if f.State() != flows.StateIdle {
		t.Fatalf("expected idle, got %s", f.State())
	}
	if !tr.equal(flows.StateIdle, flows.StateValidating, flows.StateSubmitting, flows.StateIdle) {
		t.Fatalf("unexpected transitions: %v", tr.got)
	}

	last, _ := rec.Last()
	if last.Text() != "Duplicate transaction" {
		t.Fatalf("surfaced %q, want Duplicate transaction", last.Text())
	}
	if f.LastFailure() == nil || f.LastFailure().Message != "Duplicate transaction" {
		t.Fatalf("last failure not recorded: %+v", f.LastFailure())
	}

	// the form is kept so the user can resubmit
	if f.Form().TeamName != "The Decibels" {
		t.Fatalf("form should be kept after failure")
	}
}

func TestRegistrationFlow_FailureMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind flows.FailureKind
		wantMsg  string
	}{
		{"network", &backend.NetworkError{Op: "registration.submit", Err: errors.New("connection refused")}, flows.FailureNetwork, "Registration failed. Please try again."},
		{"5xx without message", &backend.APIError{Status: 500}, flows.FailureServer, "Registration failed. Please try again."},
		{"bad shape", backend.ErrUnexpectedResponse, flows.FailureServer, "Registration failed. Please try again."},
		{"401 with message", &backend.APIError{Status: 401, Message: "Token expired"}, flows.FailureServer, "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSubmitter{submitFn: func(ctx context.Context, token string, form registration.Form) (backend.Ack, error) {
				return backend.Ack{}, tt.err
			}}
			f, rec, _ := newFlow(t, api, "tok")
			fillValid(t, f)

			err := f.Submit(context.Background())

			var failure *flows.Failure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if failure.Kind != tt.wantKind || failure.Message != tt.wantMsg {
				t.Fatalf("got %s/%q, want %s/%q", failure.Kind, failure.Message, tt.wantKind, tt.wantMsg)
			}
			if last, _ := rec.Last(); last.Text() != tt.wantMsg {
				t.Fatalf("notice %q, want %q", last.Text(), tt.wantMsg)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("failure should wrap the cause")
			}
		})
	}
}

func TestRegistrationFlow_NoTokenNeverCallsNetwork(t *testing.T) {
	for _, token := range []string{"", "   "} {
		t.Run("token="+strconv.Quote(token), func(t *testing.T) {
			api := &fakeSubmitter{}
			f, rec, _ := newFlow(t, api, token)
			fillValid(t, f)

			err := f.Submit(context.Background())

			if !errors.Is(err, flows.ErrAuthMissing) {
				t.Fatalf("expected ErrAuthMissing, got %v", err)
			}
			if api.calls.Load() != 0 {
				t.Fatalf("network must not be called without a token")
			}
			if f.State() != flows.StateIdle {
				t.Fatalf("expected idle, got %s", f.State())
			}
			last, _ := rec.Last()
			if last.Text() != "You must be logged in to register." {
				t.Fatalf("unexpected notice %q", last.Text())
			}
		})
	}
}

func TestRegistrationFlow_SubmitWhileSubmittingIsNoop(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	api := &fakeSubmitter{submitFn: func(ctx context.Context, token string, form registration.Form) (backend.Ack, error) {
		close(entered)
		<-release
		return backend.Ack{}, nil
	}}
	f, _, _ := newFlow(t, api, "tok")
	fillValid(t, f)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first submit never reached the network")
	}

	if f.State() != flows.StateSubmitting {
		t.Fatalf("expected submitting, got %s", f.State())
	}
	for i := 0; i < 3; i++ {
		if err := f.Submit(context.Background()); !errors.Is(err, flows.ErrSubmitInFlight) {
			t.Fatalf("expected ErrSubmitInFlight, got %v", err)
		}
	}
	if err := f.Reset(); !errors.Is(err, flows.ErrSubmitInFlight) {
		t.Fatalf("reset during submit should be refused, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if api.calls.Load() != 1 {
		t.Fatalf("expected one POST, got %d", api.calls.Load())
	}
}

func TestRegistrationFlow_SuccessIsTerminalUntilReset(t *testing.T) {
	api := &fakeSubmitter{}
	f, _, _ := newFlow(t, api, "tok")
	fillValid(t, f)

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.Submit(context.Background()); !errors.Is(err, flows.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	if err := f.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if f.State() != flows.StateIdle || f.Form().TeamSize != 1 {
		t.Fatalf("expected blank idle form, got %s %+v", f.State(), f.Form())
	}

	fillValid(t, f)
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if api.calls.Load() != 2 {
		t.Fatalf("expected two POSTs in total, got %d", api.calls.Load())
	}
}

func TestRegistrationFlow_OutOfRangeTeamSizeNeverPosts(t *testing.T) {
	tests := []struct {
		in      string
		wantMsg string
	}{
		{"0", "Team size must be at least 1"},
		{"-1", "Team size must be at least 1"},
		{"11", "Team size cannot exceed 10"},
		{"99999999999999999999", "Team size cannot exceed 10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			api := &fakeSubmitter{}
			f, _, _ := newFlow(t, api, "tok")
			fillValid(t, f)
			if err := f.UpdateField(registration.FieldTeamSize, tt.in); err != nil {
				t.Fatalf("UpdateField: %v", err)
			}

			err := f.Submit(context.Background())

			var failure *flows.Failure
			if !errors.As(err, &failure) || failure.Kind != flows.FailureValidation {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if got := f.Errors()[registration.FieldTeamSize]; got != tt.wantMsg {
				t.Fatalf("teamSize error %q, want %q", got, tt.wantMsg)
			}
			if api.calls.Load() != 0 {
				t.Fatalf("expected no POST, got %d", api.calls.Load())
			}
		})
	}
}

func TestRegistrationFlow_PreselectedEvent(t *testing.T) {
	f := flows.NewRegistrationFlow(flows.RegistrationConfig{PreselectedEvent: "Hackathon"},
		&fakeSubmitter{}, tokenSource(t, ""), notifications.NewRecorder(nil))

	if f.Form().EventName != "Hackathon" {
		t.Fatalf("preselected event not applied: %+v", f.Form())
	}
}

func TestRegistrationFlow_MissingRequiredFieldProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		api := &fakeSubmitter{}
		f := flows.NewRegistrationFlow(flows.RegistrationConfig{}, api,
			session.Scope(session.NewMemoryStore(), "sid", session.KeyUserToken), notifications.NewRecorder(nil))
		// team size falls back to 1, so it can never be missing
		required := []string{}
		for _, name := range registration.FieldNames {
			if name != registration.FieldTeamSize {
				required = append(required, name)
			}
		}
		missing := rapid.SampledFrom(required).Draw(rt, "missing")
		blank := rapid.SampledFrom([]string{"", " ", "\t"}).Draw(rt, "blank")

		for name, value := range validFields {
			if name == missing {
				value = blank
			}
			if err := f.UpdateField(name, value); err != nil {
				rt.Fatalf("UpdateField: %v", err)
			}
		}
		if missing != registration.FieldPaymentScreenshot {
			f.SelectFile(screenshot())
		}

		err := f.Submit(context.Background())

		var verrs registration.ValidationErrors
		if !errors.As(err, &verrs) {
			rt.Fatalf("expected validation errors when %s is missing, got %v", missing, err)
		}
		if api.calls.Load() != 0 {
			rt.Fatalf("network called with %s missing", missing)
		}
	})
}
