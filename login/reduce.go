package login

import "github.com/monerokon/xmrpos-login/authclient"

// EventType identifies a state transition request.
type EventType int

const (
	// EventReset starts a new attempt: clears any outcome and bumps Attempt.
	EventReset EventType = iota
	// EventStarted marks the authentication call as dispatched.
	EventStarted
	// EventRejected fails the attempt before any network call.
	EventRejected
	// EventSucceeded resolves the in-flight call successfully.
	EventSucceeded
	// EventFailed resolves the in-flight call with an error.
	EventFailed
)

// Event is the input to Reduce. Attempt must match the current attempt for
// every event except EventReset; stale events are ignored.
type Event struct {
	Type    EventType
	Attempt uint64
	Err     *Error
	Session *authclient.Session
}

// Reduce returns the state that results from applying ev to s. It is pure:
// events that do not apply to the current phase return s unchanged.
func Reduce(s State, ev Event) State {
	if ev.Type != EventReset && ev.Attempt != s.Attempt {
		return s
	}

	switch ev.Type {
	case EventReset:
		return State{Phase: PhaseIdle, Attempt: s.Attempt + 1}

	case EventStarted:
		if s.Phase != PhaseIdle {
			return s
		}
		return State{Phase: PhaseInFlight, Attempt: s.Attempt}

	case EventRejected:
		if s.Phase != PhaseIdle {
			return s
		}
		return State{Phase: PhaseFailed, Attempt: s.Attempt, Err: orUnknown(ev.Err)}

	case EventSucceeded:
		if s.Phase != PhaseInFlight {
			return s
		}
		return State{Phase: PhaseSucceeded, Attempt: s.Attempt, Session: ev.Session}

	case EventFailed:
		if s.Phase != PhaseInFlight {
			return s
		}
		return State{Phase: PhaseFailed, Attempt: s.Attempt, Err: orUnknown(ev.Err)}
	}

	return s
}

func orUnknown(err *Error) *Error {
	if err == nil {
		return &Error{Kind: KindAuth, Message: MsgUnknownError}
	}
	if err.Message == "" {
		return &Error{Kind: err.Kind, Message: MsgUnknownError, Err: err.Err}
	}
	return err
}
