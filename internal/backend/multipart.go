package backend

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/geocoder89/impactfest/internal/domain/registration"
)

var ErrMissingScreenshot = errors.New("payment screenshot missing")

// EncodeRegistration maps the form onto the backend's field names. The phone
// number doubles as the team number.
func EncodeRegistration(form registration.Form) ([]byte, string, error) {
	if form.PaymentScreenshot == nil {
		return nil, "", ErrMissingScreenshot
	}

	f := form.Normalized()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"teamName", f.TeamName},
		{"teamNumber", f.Phone},
		{"transactionUid", f.TransactionID},
		{"eventName", f.EventName},
	}
	for _, fld := range fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", fld.name, err)
		}
	}

	if err := writeFile(w, "paymentScreenshot", f.PaymentScreenshot); err != nil {
		return nil, "", err
	}

	extra := []struct{ name, value string }{
		{"fullName", f.FullName},
		{"email", f.Email},
		{"collegeName", f.CollegeName},
		{"teamSize", strconv.Itoa(f.TeamSize)},
	}
	for _, fld := range extra {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", fld.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, u *registration.Upload) error {
	filename := u.Filename
	if filename == "" {
		filename = "screenshot"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", u.ContentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(u.Content); err != nil {
		return fmt.Errorf("write %s: %w", field, err)
	}
	return nil
}
