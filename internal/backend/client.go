package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/impactfest/internal/domain/registration"
	"github.com/geocoder89/impactfest/internal/domain/user"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL string
	// Timeout of zero leaves the http.Client default (no timeout).
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the festival backend API.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	log     *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		tracer:  otel.Tracer("github.com/geocoder89/impactfest/internal/backend"),
		log:     log,
	}
}

// envelope is the common {success, message} shape every endpoint answers with.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
}

type Ack struct {
	Message string
}

// SubmitRegistration posts the form as multipart to /registration.
func (c *Client) SubmitRegistration(ctx context.Context, token string, form registration.Form) (Ack, error) {
	body, contentType, err := EncodeRegistration(form)
	if err != nil {
		return Ack{}, err
	}

	var out envelope
	err = c.do(ctx, "registration.submit", http.MethodPost, "/registration", token, contentType, body, &out)
	if err != nil {
		return Ack{}, err
	}

	return Ack{Message: out.Message}, nil
}

type profileResponse struct {
	envelope
	User          *user.User            `json:"user"`
	Registrations []registration.Record `json:"registrations"`
}

func (c *Client) FetchProfile(ctx context.Context, token string) (user.Profile, error) {
	var out profileResponse
	err := c.do(ctx, "profile.fetch", http.MethodGet, "/profile", token, "", nil, &out)
	if err != nil {
		return user.Profile{}, err
	}

	if out.User == nil {
		return user.Profile{}, fmt.Errorf("%w: profile without user", ErrUnexpectedResponse)
	}

	regs := out.Registrations
	if regs == nil {
		regs = []registration.Record{}
	}

	return user.Profile{User: *out.User, Registrations: regs}, nil
}

type signInResponse struct {
	envelope
	Token string `json:"token"`
}

// AdminSignIn exchanges admin credentials for a bearer token.
func (c *Client) AdminSignIn(ctx context.Context, email, password string) (string, error) {
	b, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	var out signInResponse
	err = c.do(ctx, "admin.signin", http.MethodPost, "/admin/signin", "", "application/json", b, &out)
	if err != nil {
		return "", err
	}

	if out.Token == "" {
		return "", fmt.Errorf("%w: sign-in without token", ErrUnexpectedResponse)
	}
	return out.Token, nil
}

// do issues exactly one request; there is no retry.
func (c *Client) do(ctx context.Context, op, method, path, token, contentType string, body []byte, out interface{ outcome() (*bool, string) }) error {
	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("build %s request: %w", op, err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.WarnContext(ctx, "backend request failed", "op", op, "err", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return &NetworkError{Op: op, Err: err}
	}

	c.log.DebugContext(ctx, "backend response",
		"op", op,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		span.SetStatus(codes.Error, "status")
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	success, message := out.outcome()
	if success == nil {
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("%w: missing success flag", ErrUnexpectedResponse)
	}
	if !*success {
		span.SetStatus(codes.Error, "rejected")
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	return nil
}

func (e *envelope) outcome() (*bool, string) {
	return e.Success, e.Message
}
