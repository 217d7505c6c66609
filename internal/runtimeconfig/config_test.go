package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_Sentinels(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"live workspace", func(c *runtimeconfig.Config) { c.LiveWorkspace = " " }, runtimeconfig.ErrLiveWorkspaceRequired},
		{"unknown translator", func(c *runtimeconfig.Config) { c.Translator.Provider = "babelfish" }, runtimeconfig.ErrTranslatorProviderUnknown},
		{"deepl without key", func(c *runtimeconfig.Config) { c.Translator.Provider = "DeepL" }, runtimeconfig.ErrTranslatorAuthKeyRequired},
		{"negative timeout", func(c *runtimeconfig.Config) { c.Translator.Timeout = -time.Second }, runtimeconfig.ErrTranslatorTimeoutInvalid},
		{"unknown driver", func(c *runtimeconfig.Config) { c.Storage.Driver = "mongo" }, runtimeconfig.ErrStorageDriverUnknown},
		{"sqlite without dsn", func(c *runtimeconfig.Config) { c.Storage.Driver = "sqlite3" }, runtimeconfig.ErrStorageDSNRequired},
		{"negative cache ttl", func(c *runtimeconfig.Config) { c.NodeTypes.CacheTTL = -time.Second }, runtimeconfig.ErrNodeTypeCacheTTLInvalid},
		{"negative command timeout", func(c *runtimeconfig.Config) { c.Commands.Timeout = -time.Second }, runtimeconfig.ErrCommandTimeoutInvalid},
		{"missing logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"unknown logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"invalid level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"invalid format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
		{"undeclared default preset", func(c *runtimeconfig.Config) { c.Dimension.DefaultPreset = "de" }, locales.ErrDimensionInvalid},
		{"invalid strategy", func(c *runtimeconfig.Config) {
			c.Dimension.Presets["de"] = locales.Preset{TranslationStrategy: "always"}
		}, locales.ErrStrategyInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

const sampleConfig = `
enabled: true
translateInlineEditables: true
dimension:
  name: language
  defaultPreset: en_US
  presets:
    en_US:
      label: English (US)
    de:
      label: German
      translationStrategy: sync
    fr_CA:
      label: French (Canada)
      translationStrategy: once
      languageCode: fr-CA
translator:
  provider: deepl
  authKey: secret
  timeout: 10s
  maxRetries: 5
  ignoreTags: [code]
storage:
  driver: sqlite3
  dsn: "file:autotranslate.db?_fk=1"
logging:
  provider: gologger
  level: debug
  format: json
`

func TestLoadDecodesOverDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Load(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.TranslateInlineEditables {
		t.Fatal("expected inline editables flag")
	}
	if cfg.LiveWorkspace != "live" {
		t.Fatalf("expected default live workspace, got %q", cfg.LiveWorkspace)
	}
	if len(cfg.Dimension.Presets) != 3 || cfg.Dimension.Presets["fr_CA"].LanguageCode != "fr-CA" {
		t.Fatalf("unexpected presets %+v", cfg.Dimension.Presets)
	}
	if cfg.Translator.Timeout != 10*time.Second || cfg.Translator.MaxRetries != 5 {
		t.Fatalf("unexpected translator config %+v", cfg.Translator)
	}
	if cfg.Commands.Timeout != 2*time.Minute {
		t.Fatalf("expected default command timeout, got %s", cfg.Commands.Timeout)
	}
}

func TestLoadEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cfg.Dimension.Presets["en_US"]; !ok {
		t.Fatalf("expected default preset, got %+v", cfg.Dimension.Presets)
	}
}

func TestLoadFileRejectsInvalidDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("translator: [broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := runtimeconfig.LoadFile(path); !errors.Is(err, runtimeconfig.ErrConfigDecode) {
		t.Fatalf("expected ErrConfigDecode, got %v", err)
	}

	if err := os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := runtimeconfig.LoadFile(path); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
