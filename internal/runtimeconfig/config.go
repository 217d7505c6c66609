package runtimeconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"gopkg.in/yaml.v3"
)

// Translator providers.
const (
	TranslatorNoop  = "noop"
	TranslatorDeepL = "deepl"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite3"
	StoragePostgres = "postgres"
)

var (
	ErrLiveWorkspaceRequired     = errors.New("autotranslate config: live workspace is required")
	ErrTranslatorProviderUnknown = errors.New("autotranslate config: translator provider is invalid")
	ErrTranslatorAuthKeyRequired = errors.New("autotranslate config: translator auth key is required")
	ErrTranslatorTimeoutInvalid  = errors.New("autotranslate config: translator timeout must be zero or positive")
	ErrStorageDriverUnknown      = errors.New("autotranslate config: storage driver is invalid")
	ErrStorageDSNRequired        = errors.New("autotranslate config: storage dsn is required for sql drivers")
	ErrNodeTypeCacheTTLInvalid   = errors.New("autotranslate config: node type cache ttl must be zero or positive")
	ErrCommandTimeoutInvalid     = errors.New("autotranslate config: command timeout must be zero or positive")
	ErrLoggingProviderRequired   = errors.New("autotranslate config: logging provider is required")
	ErrLoggingProviderUnknown    = errors.New("autotranslate config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("autotranslate config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("autotranslate config: logging format is invalid")
	ErrConfigDecode              = errors.New("autotranslate config: decode failed")
)

// Config aggregates the switches, dimension table and adapter bindings of the module.
type Config struct {
	// Enabled is the global automatic translation switch.
	Enabled bool `yaml:"enabled"`
	// TranslateInlineEditables routes inline-editable string properties without
	// an explicit flag to translation.
	TranslateInlineEditables bool              `yaml:"translateInlineEditables"`
	LiveWorkspace            string            `yaml:"liveWorkspace"`
	Dimension                locales.Dimension `yaml:"dimension"`
	Translator               TranslatorConfig  `yaml:"translator"`
	Storage                  StorageConfig     `yaml:"storage"`
	NodeTypes                NodeTypesConfig   `yaml:"nodeTypes"`
	Commands                 CommandsConfig    `yaml:"commands"`
	Logging                  LoggingConfig     `yaml:"logging"`
}

// TranslatorConfig selects and configures the translation provider.
type TranslatorConfig struct {
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"baseURL"`
	AuthKey    string        `yaml:"authKey"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries uint          `yaml:"maxRetries"`
	IgnoreTags []string      `yaml:"ignoreTags"`
}

// StorageConfig selects the node store backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NodeTypesConfig points at node type definitions and their persistence.
type NodeTypesConfig struct {
	// File is a YAML definition file loaded at startup.
	File string `yaml:"file"`
	// Persist stores definitions through the SQL storage backend.
	Persist  bool          `yaml:"persist"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"addSource"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns a single preset setup with the noop translator and in-memory storage.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		LiveWorkspace: "live",
		Dimension: locales.Dimension{
			Name:          "language",
			DefaultPreset: "en_US",
			Presets: map[string]locales.Preset{
				"en_US": {Label: "English (US)", TranslationStrategy: string(locales.StrategyNone)},
			},
		},
		Translator: TranslatorConfig{
			Provider:   TranslatorNoop,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		NodeTypes: NodeTypesConfig{
			CacheTTL: time.Minute,
		},
		Commands: CommandsConfig{
			Timeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.LiveWorkspace) == "" {
		return ErrLiveWorkspaceRequired
	}
	if err := cfg.Dimension.Validate(); err != nil {
		return err
	}

	provider := normalize(cfg.Translator.Provider)
	if err := validation.Validate(provider, validation.Required, validation.In(TranslatorNoop, TranslatorDeepL)); err != nil {
		return fmt.Errorf("%w: %q", ErrTranslatorProviderUnknown, cfg.Translator.Provider)
	}
	if provider == TranslatorDeepL && strings.TrimSpace(cfg.Translator.AuthKey) == "" {
		return ErrTranslatorAuthKeyRequired
	}
	if cfg.Translator.Timeout < 0 {
		return ErrTranslatorTimeoutInvalid
	}

	driver := normalize(cfg.Storage.Driver)
	if err := validation.Validate(driver, validation.Required, validation.In(StorageMemory, StorageSQLite, StoragePostgres)); err != nil {
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if driver != StorageMemory && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
	}
	if cfg.NodeTypes.CacheTTL < 0 {
		return ErrNodeTypeCacheTTLInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}

	logProvider := normalize(cfg.Logging.Provider)
	if logProvider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(logProvider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if logProvider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// Load decodes YAML from r over DefaultConfig and validates the result.
func Load(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	defaultPresets := cfg.Dimension.Presets
	cfg.Dimension.Presets = nil
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigDecode, err)
	}
	if len(cfg.Dimension.Presets) == 0 {
		cfg.Dimension.Presets = defaultPresets
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and validates the YAML configuration at path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("autotranslate config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
