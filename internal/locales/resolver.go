package locales

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeConfigInvalid tags configuration errors raised while resolving presets.
	TextCodeConfigInvalid = "AUTOTRANSLATE_CONFIG_INVALID"
	// TextCodePresetUnknown tags lookups of presets missing from the dimension.
	TextCodePresetUnknown = "AUTOTRANSLATE_PRESET_UNKNOWN"
)

var (
	// ErrUnknownPreset is returned when a preset identifier is not configured.
	ErrUnknownPreset = errors.New("locales: unknown preset")
	// ErrDimensionInvalid is returned when the dimension lacks a name or default preset.
	ErrDimensionInvalid = errors.New("locales: dimension configuration is invalid")
)

// Preset is a configured value of the locale dimension.
type Preset struct {
	Label               string `yaml:"label" json:"label,omitempty"`
	TranslationStrategy string `yaml:"translationStrategy" json:"translationStrategy,omitempty"`
	LanguageCode        string `yaml:"languageCode" json:"languageCode,omitempty"`
}

// Dimension describes the locale dimension and its presets.
type Dimension struct {
	Name          string            `yaml:"name" json:"name"`
	DefaultPreset string            `yaml:"defaultPreset" json:"defaultPreset"`
	Presets       map[string]Preset `yaml:"presets" json:"presets"`
}

// Validate checks the dimension shape and every preset strategy.
func (d Dimension) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.DefaultPreset, validation.Required),
		validation.Field(&d.Presets, validation.Required),
	)
	if err != nil {
		return configError(fmt.Errorf("%w: %v", ErrDimensionInvalid, err))
	}
	if _, ok := d.Presets[d.DefaultPreset]; !ok {
		return configError(fmt.Errorf("%w: default preset %q is not declared", ErrDimensionInvalid, d.DefaultPreset))
	}
	for _, name := range sortedKeys(d.Presets) {
		if _, err := ParseStrategy(d.Presets[name].TranslationStrategy); err != nil {
			return configError(fmt.Errorf("preset %q: %w", name, err))
		}
	}
	return nil
}

// Resolver answers strategy and provider language lookups for a dimension.
type Resolver struct {
	dimension Dimension
}

// NewResolver validates the dimension and returns a resolver over it.
func NewResolver(dimension Dimension) (*Resolver, error) {
	if err := dimension.Validate(); err != nil {
		return nil, err
	}
	presets := make(map[string]Preset, len(dimension.Presets))
	for name, preset := range dimension.Presets {
		presets[name] = preset
	}
	dimension.Presets = presets
	return &Resolver{dimension: dimension}, nil
}

// Dimension returns the dimension name, e.g. "language".
func (r *Resolver) Dimension() string {
	return r.dimension.Name
}

// DefaultPreset returns the canonical source preset.
func (r *Resolver) DefaultPreset() string {
	return r.dimension.DefaultPreset
}

// Presets lists every configured preset in lexical order.
func (r *Resolver) Presets() []string {
	return sortedKeys(r.dimension.Presets)
}

// Strategy returns the strategy configured for preset.
func (r *Resolver) Strategy(preset string) (Strategy, error) {
	p, err := r.lookup(preset)
	if err != nil {
		return "", err
	}
	strategy, err := ParseStrategy(p.TranslationStrategy)
	if err != nil {
		return "", configError(err)
	}
	return strategy, nil
}

// Override returns the provider language override for preset, if any.
func (r *Resolver) Override(preset string) (string, bool, error) {
	p, err := r.lookup(preset)
	if err != nil {
		return "", false, err
	}
	code := strings.TrimSpace(p.LanguageCode)
	return code, code != "", nil
}

// LanguageCode returns the provider language code for preset: the override when
// present, otherwise the identifier prefix before its first underscore.
func (r *Resolver) LanguageCode(preset string) (string, error) {
	code, ok, err := r.Override(preset)
	if err != nil {
		return "", err
	}
	if ok {
		return code, nil
	}
	prefix, _, _ := strings.Cut(preset, "_")
	return prefix, nil
}

// SyncTargets lists the presets, other than the default, whose strategy is sync.
func (r *Resolver) SyncTargets() []string {
	targets := make([]string, 0, len(r.dimension.Presets))
	for _, name := range sortedKeys(r.dimension.Presets) {
		if name == r.dimension.DefaultPreset {
			continue
		}
		strategy, err := ParseStrategy(r.dimension.Presets[name].TranslationStrategy)
		if err == nil && strategy == StrategySync {
			targets = append(targets, name)
		}
	}
	return targets
}

func (r *Resolver) lookup(preset string) (Preset, error) {
	p, ok := r.dimension.Presets[preset]
	if !ok {
		return Preset{}, goerrors.Wrap(
			fmt.Errorf("%w: %q", ErrUnknownPreset, preset),
			goerrors.CategoryNotFound,
			"preset is not configured for dimension "+r.dimension.Name,
		).WithTextCode(TextCodePresetUnknown)
	}
	return p, nil
}

func configError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "locale dimension configuration invalid").
		WithTextCode(TextCodeConfigInvalid)
}

func sortedKeys(presets map[string]Preset) []string {
	keys := make([]string, 0, len(presets))
	for key := range presets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
