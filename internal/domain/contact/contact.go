package contact

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Form is what a visitor types into the contact section.
type Form struct {
	Name    string `json:"name" validate:"min=2,max=100"`
	Email   string `json:"email" validate:"email,max=255"`
	Subject string `json:"subject" validate:"min=2,max=200"`
	Message string `json:"message" validate:"min=10,max=1000"`
}

// Message is a stored contact_messages row.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return "validation failed: " + v[0].Message
}

func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		return name
	})
	return v
}()

func (f Form) Normalized() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

func Validate(f Form) error {
	err := validate.Struct(f.Normalized())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: messageFor(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

// NewMessage builds the row to insert: trimmed text, lower-cased email.
func NewMessage(f Form) Message {
	n := f.Normalized()
	return Message{
		ID:        uuid.NewString(),
		Name:      n.Name,
		Email:     strings.ToLower(n.Email),
		Subject:   n.Subject,
		Message:   n.Message,
		CreatedAt: time.Now().UTC(),
	}
}

var messages = map[string]string{
	"name.min":    "Name must be at least 2 characters",
	"email.email": "Invalid email address",
	"subject.min": "Subject must be at least 2 characters",
	"message.min": "Message must be at least 10 characters",
}

func messageFor(field, rule, param string) string {
	if msg, ok := messages[field+"."+rule]; ok {
		return msg
	}
	if rule == "max" {
		return fmt.Sprintf("%s must contain at most %s characters", strings.ToUpper(field[:1])+field[1:], param)
	}
	return fmt.Sprintf("%s failed %s validation", field, rule)
}
