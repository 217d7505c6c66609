package gologger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Config mirrors the logging section of the runtime configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger children named after the requesting module.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the go-logger root. Format defaults to json.
func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}

	switch format := strings.ToLower(strings.TrimSpace(cfg.Format)); format {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger implements interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter renders node identifiers as strings so JSON output stays readable.
type adapter struct {
	inner glog.Logger
}

func (a *adapter) Trace(msg string, args ...any) { a.inner.Trace(msg, stringifyIDs(args)...) }
func (a *adapter) Debug(msg string, args ...any) { a.inner.Debug(msg, stringifyIDs(args)...) }
func (a *adapter) Info(msg string, args ...any)  { a.inner.Info(msg, stringifyIDs(args)...) }
func (a *adapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, stringifyIDs(args)...) }
func (a *adapter) Error(msg string, args ...any) { a.inner.Error(msg, stringifyIDs(args)...) }
func (a *adapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, stringifyIDs(args)...) }

// WithFields requires a go-logger FieldsLogger; other loggers ignore the fields.
func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	fl, ok := a.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return a
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		if id, isID := value.(uuid.UUID); isID {
			value = id.String()
		}
		copied[key] = value
	}
	return wrap(fl.WithFields(copied))
}

func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	inner := a.inner.WithContext(ctx)
	if fields := logging.ContextFields(ctx); len(fields) > 0 {
		if fl, ok := inner.(glog.FieldsLogger); ok {
			inner = fl.WithFields(fields)
		}
	}
	return wrap(inner)
}

// stringifyIDs copies args on first use so callers' slices are never mutated.
func stringifyIDs(args []any) []any {
	var out []any
	for i, arg := range args {
		id, ok := arg.(uuid.UUID)
		if !ok {
			continue
		}
		if out == nil {
			out = slices.Clone(args)
		}
		out[i] = id.String()
	}
	if out == nil {
		return args
	}
	return out
}
