package logutil

import "log/slog"

// ComponentLogger provides component-scoped structured logging.
type ComponentLogger struct {
	slogger   *slog.Logger
	component string
}

// NewLogger creates a ComponentLogger scoped to a named component.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   Logger().With("component", component),
		component: component,
	}
}

// WithInstance returns a new logger tagged with the backend instance host.
func (l *ComponentLogger) WithInstance(host string) *ComponentLogger {
	return l.with("instance", host)
}

// WithOperation returns a new logger tagged with the operation name.
func (l *ComponentLogger) WithOperation(name string) *ComponentLogger {
	return l.with("operation", name)
}

// WithFields returns a new logger with additional alternating key-value pairs.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	return &ComponentLogger{
		slogger:   l.slogger.With(fields...),
		component: l.component,
	}
}

func (l *ComponentLogger) with(key, value string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   l.slogger.With(key, value),
		component: l.component,
	}
}

// Component returns the component name for this logger.
func (l *ComponentLogger) Component() string {
	return l.component
}

// Slog exposes the wrapped slog.Logger.
func (l *ComponentLogger) Slog() *slog.Logger {
	return l.slogger
}

// Debug logs a message at debug level.
func (l *ComponentLogger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs a message at info level.
func (l *ComponentLogger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs a message at warn level.
func (l *ComponentLogger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs a message at error level.
func (l *ComponentLogger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// LogError logs err through LogError with this logger's context attached.
func (l *ComponentLogger) LogError(msg string, err error) {
	LogError(l.slogger, msg, err)
}
