package flows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
)

type fakeContactStore struct {
	inserted []contact.Message
	err      error
}

func (f *fakeContactStore) InsertContactMessage(ctx context.Context, m contact.Message) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, m)
	return nil
}

func fillContact(t *testing.T, c *flows.ContactFlow, fields map[string]string) {
	t.Helper()
	for name, value := range fields {
		if err := c.UpdateField(name, value); err != nil {
			t.Fatalf("UpdateField(%s): %v", name, err)
		}
	}
}

var validContact = map[string]string{
	"name":    "Ravi",
	"email":   "Ravi@Example.com ",
	"subject": "Sponsorship",
	"message": "We would like to sponsor the quiz.",
}

func TestContactFlow_Submit(t *testing.T) {
	store := &fakeContactStore{}
	rec := notifications.NewRecorder(nil)
	c := flows.NewContactFlow(store, rec, nil, nil)
	fillContact(t, c, validContact)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(store.inserted))
	}
	m := store.inserted[0]
	if m.Email != "ravi@example.com" || m.Name != "Ravi" || m.ID == "" {
		t.Fatalf("unexpected row: %+v", m)
	}
	if c.Form() != (contact.Form{}) {
		t.Fatalf("form should be cleared: %+v", c.Form())
	}
	if last, _ := rec.Last(); last.Text() != "Message sent successfully! We'll get back to you soon." {
		t.Fatalf("notice %q", last.Text())
	}
}

func TestContactFlow_InvalidReportsFirstErrorOnly(t *testing.T) {
	store := &fakeContactStore{}
	rec := notifications.NewRecorder(nil)
	c := flows.NewContactFlow(store, rec, nil, nil)
	fillContact(t, c, map[string]string{"name": "R", "email": "bad", "subject": "Hi", "message": "short"})

	err := c.Submit(context.Background())

	var failure *flows.Failure
	if !errors.As(err, &failure) || failure.Kind != flows.FailureValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if failure.Message != "Name must be at least 2 characters" {
		t.Fatalf("message %q", failure.Message)
	}
	if len(rec.All()) != 1 {
		t.Fatalf("expected a single notice, got %d", len(rec.All()))
	}
	if len(store.inserted) != 0 {
		t.Fatalf("invalid form must not be stored")
	}
	if c.Form().Name != "R" {
		t.Fatalf("form should be kept after validation failure")
	}
}

func TestContactFlow_StoreFailure(t *testing.T) {
	store := &fakeContactStore{err: errors.New("connection reset")}
	rec := notifications.NewRecorder(nil)
	c := flows.NewContactFlow(store, rec, nil, nil)
	fillContact(t, c, validContact)

	err := c.Submit(context.Background())

	var failure *flows.Failure
	if !errors.As(err, &failure) || failure.Kind != flows.FailureServer {
		t.Fatalf("expected server failure, got %v", err)
	}
	if last, _ := rec.Last(); last.Text() != "Failed to send message. Please try again." {
		t.Fatalf("notice %q", last.Text())
	}
	if c.Form().Subject != "Sponsorship" {
		t.Fatalf("form should be kept after store failure")
	}
}

func TestContactFlow_UnknownField(t *testing.T) {
	c := flows.NewContactFlow(&fakeContactStore{}, notifications.NewRecorder(nil), nil, nil)
	if err := c.UpdateField("phone", "1"); !errors.Is(err, flows.ErrUnknownContactField) {
		t.Fatalf("expected ErrUnknownContactField, got %v", err)
	}
}
