package flows

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/notifications"
)

const (
	msgContactSent  = "Message sent successfully! We'll get back to you soon."
	msgContactRetry = "Failed to send message. Please try again."
)

var ErrUnknownContactField = errors.New("unknown contact field")

type ContactStore interface {
	InsertContactMessage(ctx context.Context, m contact.Message) error
}

// ContactFlow is the contact section form. Only the first validation error is
// reported; there is no per-field error map.
type ContactFlow struct {
	mu         sync.Mutex
	form       contact.Form
	submitting bool

	store   ContactStore
	notify  notifications.Notifier
	log     *slog.Logger
	metrics OutcomeRecorder
}

func NewContactFlow(store ContactStore, notifier notifications.Notifier, log *slog.Logger, metrics OutcomeRecorder) *ContactFlow {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ContactFlow{
		store:   store,
		notify:  notifier,
		log:     log.With("flow", "contact"),
		metrics: metrics,
	}
}

func (c *ContactFlow) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "name":
		c.form.Name = value
	case "email":
		c.form.Email = value
	case "subject":
		c.form.Subject = value
	case "message":
		c.form.Message = value
	default:
		return ErrUnknownContactField
	}
	return nil
}

func (c *ContactFlow) Form() contact.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *ContactFlow) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true
	form := c.form
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if err := contact.Validate(form); err != nil {
		msg := err.Error()
		var verrs contact.ValidationErrors
		if errors.As(err, &verrs) {
			msg = verrs.First()
		}
		c.metrics.RecordOutcome("contact", string(FailureValidation))
		c.notify.Notify(ctx, notifications.Error(msg))
		return &Failure{Kind: FailureValidation, Message: msg, Err: err}
	}

	msg := contact.NewMessage(form)
	if err := c.store.InsertContactMessage(ctx, msg); err != nil {
		c.log.ErrorContext(ctx, "store contact message failed", "err", err)
		c.metrics.RecordOutcome("contact", string(FailureServer))
		c.notify.Notify(ctx, notifications.Error(msgContactRetry))
		return &Failure{Kind: FailureServer, Message: msgContactRetry, Err: err}
	}

	c.mu.Lock()
	c.form = contact.Form{}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "contact message stored", "id", msg.ID)
	c.metrics.RecordOutcome("contact", "success")
	c.notify.Notify(ctx, notifications.Success(msgContactSent))
	return nil
}
