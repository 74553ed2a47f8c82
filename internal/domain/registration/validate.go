package registration

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/geocoder89/impactfest/internal/domain/event"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors holds at most one error per field, in field declaration order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", v[0].Field, v[0].Message)
}

// First returns the message surfaced to the user.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}

var phonePattern = regexp.MustCompile(`^[0-9+\- ]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	_ = v.RegisterValidation("phonechars", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("festevent", func(fl validator.FieldLevel) bool {
		return event.IsKnown(fl.Field().String())
	})

	v.RegisterStructValidation(validateScreenshot, Form{})

	return v
}

// runs after the field tags, so screenshot errors keep their place at the end
func validateScreenshot(sl validator.StructLevel) {
	f := sl.Current().Interface().(Form)
	u := f.PaymentScreenshot

	switch {
	case u == nil:
		sl.ReportError(u, FieldPaymentScreenshot, "PaymentScreenshot", "required", "")
	case u.Size > MaxScreenshotBytes:
		sl.ReportError(u, FieldPaymentScreenshot, "PaymentScreenshot", "maxsize", fmt.Sprint(MaxScreenshotBytes))
	case !u.allowedType():
		sl.ReportError(u, FieldPaymentScreenshot, "PaymentScreenshot", "mimetype", strings.Join(AllowedScreenshotTypes, " "))
	}
}

// Validate checks the trimmed form against the registration schema. Every
// field is evaluated; each contributes only its first failing rule.
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
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true

		out = append(out, FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: messageFor(field, fe.Tag(), fe.Param()),
		})
	}
	return out
}

var messages = map[string]string{
	"fullName.min":               "Name must be at least 2 characters",
	"fullName.max":               "Name must be less than 100 characters",
	"email.email":                "Invalid email address",
	"email.max":                  "Email must be less than 255 characters",
	"phone.min":                  "Phone number must be at least 10 digits",
	"phone.max":                  "Phone number must be less than 15 digits",
	"phone.phonechars":           "Invalid phone number format",
	"collegeName.min":            "College name must be at least 2 characters",
	"collegeName.max":            "College name must be less than 200 characters",
	"eventName.required":         "Please select an event",
	"eventName.festevent":        "Please select a valid event",
	"teamName.min":               "Team name is required",
	"teamName.max":               "Team name must be less than 100 characters",
	"teamSize.min":               "Team size must be at least 1",
	"teamSize.max":               "Team size cannot exceed 10",
	"transactionId.required":     "Transaction ID is required",
	"paymentScreenshot.required": "Payment screenshot is required",
	"paymentScreenshot.maxsize":  "Max file size is 5MB.",
	"paymentScreenshot.mimetype": "Only .jpg, .png, .webp formats are supported.",
}

func messageFor(field, rule, param string) string {
	if msg, ok := messages[field+"."+rule]; ok {
		return msg
	}

	switch rule {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param
	case "max":
		return field + " must be at most " + param
	default:
		return fmt.Sprintf("%s failed %s validation", field, rule)
	}
}
