package interfaces

import "context"

// Logger is the leveled logger used across the synchronization engine.
// Its method set matches github.com/goliatone/go-logger, so a glog.Logger
// satisfies it behind a thin adapter.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields.
// WithFields returns a child; the receiver is left untouched.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// LoggerProvider resolves a logger by module name, e.g. "autotranslate.sync".
type LoggerProvider interface {
	GetLogger(name string) Logger
}
