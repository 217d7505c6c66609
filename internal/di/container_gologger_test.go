package di

import (
	"testing"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/logging/gologger"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

type fixedProvider struct{}

func (fixedProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func TestLoggerProviderSelection(t *testing.T) {
	injected := fixedProvider{}

	cases := map[string]struct {
		mutate func(*runtimeconfig.Config)
		opts   []Option
		check  func(t *testing.T, got interfaces.LoggerProvider)
	}{
		"go-logger from config": {
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Logging.Provider = "gologger"
				cfg.Logging.Level = "debug"
				cfg.Logging.Format = "json"
				cfg.Logging.Focus = []string{"autotranslate.sync"}
			},
			check: func(t *testing.T, got interfaces.LoggerProvider) {
				provider, ok := got.(*gologger.Provider)
				if !ok {
					t.Fatalf("expected go-logger provider, got %T", got)
				}
				if provider.GetLogger("autotranslate.sync") == nil {
					t.Fatal("expected named logger")
				}
			},
		},
		"console by default": {
			check: func(t *testing.T, got interfaces.LoggerProvider) {
				if got == nil {
					t.Fatal("expected a logger provider")
				}
				if _, ok := got.(*gologger.Provider); ok {
					t.Fatal("expected console provider for the default configuration")
				}
			},
		},
		"injected wins over config": {
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Provider = "gologger" },
			opts:   []Option{WithLoggerProvider(injected)},
			check: func(t *testing.T, got interfaces.LoggerProvider) {
				if _, ok := got.(fixedProvider); !ok {
					t.Fatalf("expected injected provider, got %T", got)
				}
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			container, err := NewContainer(cfg, tc.opts...)
			if err != nil {
				t.Fatalf("NewContainer: %v", err)
			}
			t.Cleanup(func() { _ = container.Close() })
			tc.check(t, container.loggerProvider)
		})
	}
}
