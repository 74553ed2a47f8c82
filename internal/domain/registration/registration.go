package registration

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var ErrUnknownField = errors.New("unknown registration field")

// Field names, in declaration order.
const (
	FieldFullName          = "fullName"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldCollegeName       = "collegeName"
	FieldEventName         = "eventName"
	FieldTeamName          = "teamName"
	FieldTeamSize          = "teamSize"
	FieldTransactionID     = "transactionId"
	FieldPaymentScreenshot = "paymentScreenshot"
)

var FieldNames = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldCollegeName,
	FieldEventName,
	FieldTeamName,
	FieldTeamSize,
	FieldTransactionID,
	FieldPaymentScreenshot,
}

// the site posted snake_case input names; both spellings resolve to the same field
var fieldAliases = map[string]string{
	"full_name":          FieldFullName,
	"college_name":       FieldCollegeName,
	"event_name":         FieldEventName,
	"team_name":          FieldTeamName,
	"team_size":          FieldTeamSize,
	"transaction_uid":    FieldTransactionID,
	"transactionUid":     FieldTransactionID,
	"payment_screenshot": FieldPaymentScreenshot,
}

// CanonicalField resolves an input name to its canonical field name.
func CanonicalField(name string) (string, bool) {
	if alias, ok := fieldAliases[name]; ok {
		return alias, true
	}
	for _, f := range FieldNames {
		if f == name {
			return f, true
		}
	}
	return "", false
}

// InputNames lists every input name that resolves to field: the canonical
// name first, then its aliases in sorted order.
func InputNames(field string) []string {
	names := []string{field}
	var aliases []string
	for alias, canonical := range fieldAliases {
		if canonical == field {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return append(names, aliases...)
}

type Form struct {
	FullName          string  `json:"fullName" validate:"min=2,max=100"`
	Email             string  `json:"email" validate:"email,max=255"`
	Phone             string  `json:"phone" validate:"min=10,max=15,phonechars"`
	CollegeName       string  `json:"collegeName" validate:"min=2,max=200"`
	EventName         string  `json:"eventName" validate:"required,festevent"`
	TeamName          string  `json:"teamName" validate:"min=1,max=100"`
	TeamSize          int     `json:"teamSize" validate:"min=1,max=10"`
	TransactionID     string  `json:"transactionId" validate:"required"`
	PaymentScreenshot *Upload `json:"paymentScreenshot" validate:"-"`
}

// NewForm returns a blank form, optionally seeded with a preselected event.
func NewForm(preselectedEvent string) Form {
	return Form{
		EventName: preselectedEvent,
		TeamSize:  1,
	}
}

// SetField assigns a text value by field name. The screenshot is set through
// the Upload pointer directly.
func (f *Form) SetField(name, value string) (string, error) {
	field, ok := CanonicalField(name)
	if !ok || field == FieldPaymentScreenshot {
		return "", ErrUnknownField
	}

	switch field {
	case FieldFullName:
		f.FullName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldCollegeName:
		f.CollegeName = value
	case FieldEventName:
		f.EventName = value
	case FieldTeamName:
		f.TeamName = value
	case FieldTeamSize:
		f.TeamSize = parseTeamSize(value)
	case FieldTransactionID:
		f.TransactionID = value
	}

	return field, nil
}

// parseTeamSize keeps any number as typed so out-of-range sizes fail
// validation. Only text that is not a number falls back to 1.
func parseTeamSize(value string) int {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	switch {
	case err == nil:
		return n
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(value, "-"):
		return math.MinInt
	case errors.Is(err, strconv.ErrRange):
		return math.MaxInt
	default:
		return 1
	}
}

// Normalized returns a copy with every text field trimmed.
func (f Form) Normalized() Form {
	out := f
	out.FullName = strings.TrimSpace(f.FullName)
	out.Email = strings.TrimSpace(f.Email)
	out.Phone = strings.TrimSpace(f.Phone)
	out.CollegeName = strings.TrimSpace(f.CollegeName)
	out.EventName = strings.TrimSpace(f.EventName)
	out.TeamName = strings.TrimSpace(f.TeamName)
	out.TransactionID = strings.TrimSpace(f.TransactionID)
	return out
}
