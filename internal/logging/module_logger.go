package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	rootModule       = "autotranslate"
	syncModule       = "autotranslate.sync"
	reconcileModule  = "autotranslate.reconcile"
	translatorModule = "autotranslate.translator"
	storeModule      = "autotranslate.store"
)

const (
	fieldNodeID       = "node_id"
	fieldSourceLocale = "source_locale"
	fieldTargetLocale = "target_locale"
)

// ModuleLogger resolves module from provider and tags entries with it.
// A nil provider, or one returning nil, yields the no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module = strings.TrimSpace(module); module == "" {
		module = rootModule
	}
	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if named := provider.GetLogger(module); named != nil {
			logger = named
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// SyncLogger returns the logger namespace reserved for the synchronizer entry points.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// ReconcileLogger returns the logger namespace reserved for variant reconciliation.
func ReconcileLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reconcileModule)
}

// TranslatorLogger returns the logger namespace reserved for translation providers.
func TranslatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translatorModule)
}

// StoreLogger returns the logger namespace reserved for the content repository.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithNodeContext tags logger with the node and the source/target presets of
// one reconciliation. Blank values are skipped.
func WithNodeContext(logger interfaces.Logger, id uuid.UUID, source, target string) interfaces.Logger {
	fields := map[string]any{}
	if id != uuid.Nil {
		fields[fieldNodeID] = id.String()
	}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[fieldSourceLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(target); trimmed != "" {
		fields[fieldTargetLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
