// Package reconcile converges a target locale variant toward its source variant.
package reconcile

import (
	"context"
	"errors"
	"reflect"
	"sort"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/selector"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeCollaboratorFailed = "RECONCILE_COLLABORATOR_FAILED"
	textCodeTranslationFailed  = "TRANSLATION_PROVIDER_FAILED"
)

// Skip reasons reported when a reconciliation pass is a no-op.
const (
	SkipReasonLanguageMissing = "language_missing"
	SkipReasonSameLanguage    = "same_language"
)

// ErrRequestInvalid is returned when a request lacks a node or target context.
var ErrRequestInvalid = errors.New("reconcile: source, target and target context are required")

// LanguageResolver maps dimension presets to provider language codes.
type LanguageResolver interface {
	Dimension() string
	LanguageCode(preset string) (string, error)
}

// Request describes one source/target pair.
type Request struct {
	Source        interfaces.Node
	Target        interfaces.Node
	TargetContext interfaces.AccessContext
	Translate     bool
}

// Result reports what a pass did.
type Result struct {
	Skipped        bool
	SkipReason     string
	SourceLanguage string
	TargetLanguage string
	Placement      Placement
	Translated     []string
	Written        []string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the reconciler logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTranslateInlineEditables toggles translation of inline-editable properties without overrides.
func WithTranslateInlineEditables(enabled bool) Option {
	return func(r *Reconciler) {
		r.translateInline = enabled
	}
}

// Reconciler applies structural and property convergence.
type Reconciler struct {
	languages       LanguageResolver
	registry        nodetypes.Registry
	translator      interfaces.Translator
	logger          interfaces.Logger
	translateInline bool
}

// New constructs a Reconciler.
func New(languages LanguageResolver, registry nodetypes.Registry, translator interfaces.Translator, opts ...Option) *Reconciler {
	r := &Reconciler{
		languages:  languages,
		registry:   registry,
		translator: translator,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile converges req.Target toward req.Source. Structural changes applied
// before a translation failure are kept; no property is written in that case.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	if req.Source == nil || req.Target == nil || req.TargetContext == nil {
		return nil, ErrRequestInvalid
	}
	dimension := r.languages.Dimension()
	sourcePreset := req.Source.DimensionValue(dimension)
	targetPreset := req.TargetContext.TargetDimension(dimension)
	logger := logging.WithNodeContext(r.logger.WithContext(ctx), req.Source.Identifier(), sourcePreset, targetPreset)

	sourceLang, err := r.languages.LanguageCode(sourcePreset)
	if err != nil {
		return nil, err
	}
	targetLang, err := r.languages.LanguageCode(targetPreset)
	if err != nil {
		return nil, err
	}
	result := &Result{SourceLanguage: sourceLang, TargetLanguage: targetLang}
	switch {
	case sourceLang == "" || targetLang == "":
		result.Skipped, result.SkipReason = true, SkipReasonLanguageMissing
	case sourceLang == targetLang:
		result.Skipped, result.SkipReason = true, SkipReasonSameLanguage
	}
	if result.Skipped {
		logger.Debug("reconcile.skipped", "reason", result.SkipReason)
		return result, nil
	}

	placement, err := r.place(ctx, req)
	if err != nil {
		return nil, collaboratorError(err, "reconcile placement failed")
	}
	result.Placement = placement
	if placement.Outcome == PlacementSkipped {
		logger.Warn("reconcile.placement.skipped", "reason", placement.Reason, "error", placement.Err)
	}

	if err := req.Target.SetStructure(ctx, req.Source.Structure()); err != nil {
		return nil, collaboratorError(err, "reconcile structure sync failed")
	}

	nodeType, err := r.registry.Get(ctx, req.Source.NodeType())
	if err != nil {
		return nil, err
	}
	partition := selector.Partition(nodeType, req.Source.Properties(), selector.Options{
		TranslateInlineEditables: r.translateInline,
	})

	values := make(map[string]any, len(partition.Copy)+len(partition.Translate))
	for name, value := range partition.Copy {
		values[name] = value
	}
	if req.Translate && len(partition.Translate) > 0 {
		translated, err := r.translator.Translate(ctx, partition.Translate, targetLang, sourceLang)
		if err != nil {
			logger.Error("reconcile.translate.failed", "error", err)
			return result, translationError(err)
		}
		for name, value := range translated {
			values[name] = value
			result.Translated = append(result.Translated, name)
		}
		sort.Strings(result.Translated)
	} else {
		for name, value := range partition.Translate {
			values[name] = value
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		next := values[name]
		if current, ok := req.Target.Property(name); ok && reflect.DeepEqual(current, next) {
			continue
		}
		if err := req.Target.SetProperty(ctx, name, next); err != nil {
			return result, collaboratorError(err, "reconcile property write failed")
		}
		result.Written = append(result.Written, name)
	}

	logger.Debug("reconcile.completed",
		"placement", placement.Outcome,
		"translated", len(result.Translated),
		"written", len(result.Written),
	)
	return result, nil
}

func collaboratorError(err error, message string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithTextCode(textCodeCollaboratorFailed)
}

func translationError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "reconcile translation failed").
		WithTextCode(textCodeTranslationFailed)
}
