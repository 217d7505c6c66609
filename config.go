package autotranslate

import (
	"io"

	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
)

var (
	ErrLiveWorkspaceRequired     = runtimeconfig.ErrLiveWorkspaceRequired
	ErrTranslatorProviderUnknown = runtimeconfig.ErrTranslatorProviderUnknown
	ErrTranslatorAuthKeyRequired = runtimeconfig.ErrTranslatorAuthKeyRequired
	ErrTranslatorTimeoutInvalid  = runtimeconfig.ErrTranslatorTimeoutInvalid
	ErrStorageDriverUnknown      = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrNodeTypeCacheTTLInvalid   = runtimeconfig.ErrNodeTypeCacheTTLInvalid
	ErrCommandTimeoutInvalid     = runtimeconfig.ErrCommandTimeoutInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigDecode              = runtimeconfig.ErrConfigDecode
	ErrUnknownPreset             = locales.ErrUnknownPreset
	ErrDimensionInvalid          = locales.ErrDimensionInvalid
	ErrStrategyInvalid           = locales.ErrStrategyInvalid
)

type (
	Config           = runtimeconfig.Config
	TranslatorConfig = runtimeconfig.TranslatorConfig
	StorageConfig    = runtimeconfig.StorageConfig
	NodeTypesConfig  = runtimeconfig.NodeTypesConfig
	CommandsConfig   = runtimeconfig.CommandsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	Dimension        = locales.Dimension
	Preset           = locales.Preset
	Strategy         = locales.Strategy
)

const (
	StrategyNone = locales.StrategyNone
	StrategyOnce = locales.StrategyOnce
	StrategySync = locales.StrategySync
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig decodes YAML over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	return runtimeconfig.Load(r)
}

// LoadConfigFile reads and validates the YAML configuration at path.
func LoadConfigFile(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
