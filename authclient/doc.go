// Package authclient authenticates a point-of-sale device against an XMRpos
// backend instance.
//
// Client.Login performs a single POST to {instance}/auth/login-pos and returns
// a Session carrying the issued tokens. Failures are oops errors whose message
// is safe to show to the operator; Code classifies them.
//
// Each Client guards its calls with a rate limiter shared across instances and
// a circuit breaker per instance host, so a dead backend is not hammered by
// repeated submissions. Prometheus metrics are recorded for every call.
//
// SECURITY: passwords and tokens are never logged. Session implements
// slog.LogValuer and omits both tokens.
package authclient
