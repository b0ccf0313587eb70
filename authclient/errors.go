package authclient

import "github.com/samber/oops"

// Error codes attached to every error returned by Client.Login.
const (
	// CodeRejected means the backend refused the credentials (4xx).
	CodeRejected = "AUTH_REJECTED"
	// CodeServer means the backend failed while handling the request (5xx).
	CodeServer = "AUTH_SERVER"
	// CodeTransport means no response was received.
	CodeTransport = "AUTH_TRANSPORT"
	// CodeDecode means the response could not be understood.
	CodeDecode = "AUTH_DECODE"
	// CodeUnavailable means the circuit breaker for the instance is open.
	CodeUnavailable = "AUTH_UNAVAILABLE"
	// CodeThrottled means the local login rate limit could not be satisfied.
	CodeThrottled = "AUTH_THROTTLED"
)

// User-facing messages for failures that carry no backend message.
const (
	MsgUnavailable = "Instance temporarily unavailable, try again shortly"
	MsgThrottled   = "Too many login attempts, slow down"
	MsgBadResponse = "Unexpected response from instance"
)

// Code returns the error code of an error produced by this package, or ""
// for anything else.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// IsRejected reports whether the backend refused the credentials.
func IsRejected(err error) bool {
	return Code(err) == CodeRejected
}

// countsAsBreakerFailure reports whether err says something about the health
// of the instance. Credential rejections do not.
func countsAsBreakerFailure(err error) bool {
	return err != nil && Code(err) != CodeRejected
}
