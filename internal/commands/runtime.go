package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// DefaultCommandTimeout bounds a synchronization command when the host leaves
// commands.timeout unset. One translation request is issued per target preset.
const DefaultCommandTimeout = 2 * time.Minute

// executionContext derives the context a command runs under. A nil parent
// falls back to Background and a non-positive timeout leaves it unbounded.
func executionContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// deadlineFields reports the remaining budget of ctx as a log field.
func deadlineFields(ctx context.Context, fields map[string]any) map[string]any {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fields
	}
	out := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		out[key] = value
	}
	out["command_budget"] = time.Until(deadline).Round(time.Millisecond).String()
	return out
}

// EnsureLogger substitutes a no-op logger for nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
