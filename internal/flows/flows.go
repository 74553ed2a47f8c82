// Package flows drives the user-facing form flows of the festival site:
// registration, profile, admin sign-in and contact. Each flow owns its own
// state; nothing is shared between instances.
package flows

import (
	"errors"
	"fmt"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrAuthMissing      = errors.New("authentication required")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("already submitted; reset to start again")
)

type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailureAuthMissing FailureKind = "auth_missing"
	FailureNetwork     FailureKind = "network"
	FailureServer      FailureKind = "server"
)

// Failure is what a submit attempt ended with when it did not succeed.
// Message is the text shown to the user.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// OutcomeRecorder counts how flows end. Observability provides the
// prometheus-backed implementation.
type OutcomeRecorder interface {
	RecordOutcome(flow, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string, string) {}
