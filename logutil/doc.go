// Package logutil provides structured logging for the xmrpos login tooling,
// built on top of log/slog.
//
// # Basic Usage
//
//	// Initialize logging (typically in main.go)
//	logutil.SetupLogger(debug, structured)
//
//	logutil.Debug("normalizing instance url", "host", host)
//	logutil.Info("login succeeded", "vendor_id", vendorID)
//	logutil.Error("login failed", "error", err)
//
// Components that log repeatedly should hold a ComponentLogger:
//
//	log := logutil.NewLogger("login").WithOperation("submit")
//	log.Info("attempt accepted", "attempt", n)
//
// # Debug Mode
//
// Debug logging can be enabled in two ways:
//   - Pass debug=true to SetupLogger
//   - Set XMRPOS_DEBUG=true environment variable
//
// # Secrets
//
// Passwords and session tokens must never be passed as log attributes.
package logutil
