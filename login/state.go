package login

import (
	"encoding/json"
	"strings"

	"github.com/monerokon/xmrpos-login/authclient"
)

// Phase is the lifecycle position of a login attempt.
type Phase int

const (
	// PhaseIdle means no attempt is running and no outcome is shown.
	PhaseIdle Phase = iota
	// PhaseInFlight means the authentication call has not resolved yet.
	PhaseInFlight
	// PhaseFailed means the attempt ended with an error message.
	PhaseFailed
	// PhaseSucceeded means the credentials were accepted.
	PhaseSucceeded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in_flight"
	case PhaseFailed:
		return "failed"
	case PhaseSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Kind tags where an attempt failed.
type Kind string

const (
	// KindValidation is a missing or malformed form field.
	KindValidation Kind = "validation"
	// KindURL is a malformed instance URL or a refused scheme.
	KindURL Kind = "url"
	// KindAuth is a failure reported by the authentication call.
	KindAuth Kind = "auth"
)

// MsgUnknownError is shown when an authentication failure carries no message.
const MsgUnknownError = "Unknown error"

// Error is the failure carried by a Failed state. Error returns Message
// verbatim so it can be shown to the operator as-is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = MsgUnknownError
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// State is an immutable snapshot of the current attempt.
type State struct {
	Phase Phase
	// Attempt numbers submissions accepted by the controller, starting at 1.
	Attempt uint64
	// Err is set only in PhaseFailed.
	Err *Error
	// Session is set only in PhaseSucceeded, when the client returned one.
	Session *authclient.Session
}

// InProgress reports whether the authentication call is outstanding.
func (s State) InProgress() bool {
	return s.Phase == PhaseInFlight
}

// Succeeded reports whether the attempt ended successfully.
func (s State) Succeeded() bool {
	return s.Phase == PhaseSucceeded
}

// Failed reports whether the attempt ended with an error.
func (s State) Failed() bool {
	return s.Phase == PhaseFailed
}

// ErrorMessage returns the message to show, or "" outside PhaseFailed.
func (s State) ErrorMessage() string {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}
	return s.Err.Message
}

// ErrorKind returns the failure kind, or "" outside PhaseFailed.
func (s State) ErrorKind() Kind {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}
	return s.Err.Kind
}

type stateJSON struct {
	Phase        string              `json:"phase"`
	Attempt      uint64              `json:"attempt"`
	InProgress   bool                `json:"inProgress"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	ErrorKind    Kind                `json:"errorKind,omitempty"`
	Session      *authclient.Session `json:"session,omitempty"`
}

// MarshalJSON renders the state for machine-readable output. Tokens are
// never included.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Phase:        s.Phase.String(),
		Attempt:      s.Attempt,
		InProgress:   s.InProgress(),
		ErrorMessage: s.ErrorMessage(),
		ErrorKind:    s.ErrorKind(),
		Session:      s.Session,
	})
}
