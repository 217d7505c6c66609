package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

type fieldsKey struct{}

const (
	fieldPassTrigger = "sync_trigger"
	fieldPassNode    = "sync_node_id"
)

// WithFields attaches a copy of fields when logger implements
// interfaces.FieldsLogger, otherwise logger is returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// ContextWithFields layers fields over any fields already carried by ctx.
// Loggers that support it merge them into entries emitted via WithContext.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextFields returns a copy of the fields carried by ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithPass tags ctx with the trigger and canonical node of a
// synchronization pass so every entry logged inside the pass can be correlated.
func ContextWithPass(ctx context.Context, trigger string, nodeID uuid.UUID) context.Context {
	fields := map[string]any{fieldPassTrigger: trigger}
	if nodeID != uuid.Nil {
		fields[fieldPassNode] = nodeID.String()
	}
	return ContextWithFields(ctx, fields)
}
