// Package synchronizer drives locale variant synchronization from adoption and
// publish lifecycle events.
package synchronizer

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/contextcache"
	"github.com/goliatone/go-cms-autotranslate/internal/guard"
	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/reconcile"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultLiveWorkspace is the canonical workspace publish events are accepted from.
	DefaultLiveWorkspace = "live"

	textCodeCollaboratorFailed = "SYNC_COLLABORATOR_FAILED"
	textCodeReentrant          = "SYNC_REENTRANT"
)

var (
	// ErrNodeRequired is returned when an entry point receives a nil node or context.
	ErrNodeRequired = errors.New("synchronizer: node and context are required")
	// ErrReentrant is returned when SyncNode is called from inside a running pass.
	ErrReentrant = errors.New("synchronizer: sync requested from inside a pass")
)

// StrategyResolver exposes the dimension preset table.
type StrategyResolver interface {
	Dimension() string
	DefaultPreset() string
	Strategy(preset string) (locales.Strategy, error)
	SyncTargets() []string
}

// Reconciler converges one target variant toward its source.
type Reconciler interface {
	Reconcile(ctx context.Context, req reconcile.Request) (*reconcile.Result, error)
}

// Option configures a Service.
type Option func(*Service)

// WithEnabled toggles the global automatic translation switch.
func WithEnabled(enabled bool) Option {
	return func(s *Service) {
		s.enabled = enabled
	}
}

// WithLiveWorkspace overrides the canonical workspace name.
func WithLiveWorkspace(name string) Option {
	return func(s *Service) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.liveWorkspace = trimmed
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service reacts to adoption and publish events. It owns its reentrancy guard;
// each pass builds its own context cache, so passes may run concurrently.
type Service struct {
	resolver      StrategyResolver
	registry      nodetypes.Registry
	publisher     interfaces.Publisher
	reconciler    Reconciler
	factory       interfaces.ContextFactory
	guard         *guard.Guard
	logger        interfaces.Logger
	enabled       bool
	liveWorkspace string
}

// New constructs a Service. Synchronization is enabled by default.
func New(
	resolver StrategyResolver,
	registry nodetypes.Registry,
	factory interfaces.ContextFactory,
	publisher interfaces.Publisher,
	reconciler Reconciler,
	opts ...Option,
) *Service {
	s := &Service{
		resolver:      resolver,
		registry:      registry,
		publisher:     publisher,
		reconciler:    reconciler,
		factory:       factory,
		guard:         guard.New(),
		logger:        logging.NoOp(),
		enabled:       true,
		liveWorkspace: DefaultLiveWorkspace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsActive reports whether any synchronization pass is in flight. Events from
// the pass itself are recognised by their context, not by this flag.
func (s *Service) IsActive() bool {
	return s.guard.IsActive()
}

// Enabled reports the global switch.
func (s *Service) Enabled() bool {
	return s.enabled
}

// OnNodeAdopted handles the first materialisation of a variant of node in
// target. It reconciles with translation when the target preset uses the once
// strategy.
func (s *Service) OnNodeAdopted(ctx context.Context, node interfaces.Node, target interfaces.AccessContext, recursive bool) (*Report, error) {
	if node == nil || target == nil {
		return nil, ErrNodeRequired
	}
	dimension := s.resolver.Dimension()
	report := &Report{
		Trigger: TriggerAdopted,
		NodeID:  node.Identifier(),
		Source:  node.DimensionValue(dimension),
	}
	preset := target.TargetDimension(dimension)
	logger := logging.WithNodeContext(s.logger, node.Identifier(), report.Source, preset)

	if reason, ok := s.gate(ctx); !ok {
		logger.Debug("sync.adopt.ignored", "reason", reason)
		return report.skip(reason), nil
	}
	allowed, err := s.nodeTypeAllowed(ctx, node)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return report.skip(ReasonNodeTypeDisabled), nil
	}
	strategy, err := s.resolver.Strategy(preset)
	if err != nil {
		return nil, err
	}
	if strategy != locales.StrategyOnce {
		report.add(preset, OutcomeSkipped, ReasonStrategyMismatch, nil)
		return report, nil
	}

	ctx, release := s.guard.Enter(ctx)
	defer release()
	ctx = logging.ContextWithPass(ctx, string(report.Trigger), node.Identifier())
	logger = logger.WithContext(ctx)
	logger.Info("sync.adopt.start", "recursive", recursive)

	variant, err := target.FindByIdentifier(ctx, node.Identifier())
	if err != nil {
		if errors.Is(err, interfaces.ErrNodeNotFound) {
			report.add(preset, OutcomeSkipped, ReasonTargetMissing, nil)
			return report, nil
		}
		return report, collaboratorError(err, "lookup of adopted variant failed")
	}
	if variant.DimensionValue(dimension) != preset {
		report.add(preset, OutcomeSkipped, ReasonTargetMissing, nil)
		return report, nil
	}

	result, err := s.reconciler.Reconcile(ctx, reconcile.Request{
		Source:        node,
		Target:        variant,
		TargetContext: target,
		Translate:     true,
	})
	if err != nil {
		logger.Error("sync.adopt.failed", "error", err)
		return report, err
	}
	outcome, reason := reconciledOutcome(result)
	report.add(preset, outcome, reason, result)
	logger.Info("sync.adopt.completed", "outcome", outcome)
	return report, nil
}

// OnNodePublished handles a publish of node into workspace. Only canonical
// locale nodes published to the live workspace fan out to sync presets.
func (s *Service) OnNodePublished(ctx context.Context, node interfaces.Node, workspace string) (*Report, error) {
	if node == nil {
		return nil, ErrNodeRequired
	}
	dimension := s.resolver.Dimension()
	report := &Report{
		Trigger: TriggerPublished,
		NodeID:  node.Identifier(),
		Source:  node.DimensionValue(dimension),
	}
	logger := logging.WithNodeContext(s.logger, node.Identifier(), report.Source, "")

	if reason, ok := s.gate(ctx); !ok {
		logger.Debug("sync.publish.ignored", "reason", reason)
		return report.skip(reason), nil
	}
	if workspace != s.liveWorkspace {
		return report.skip(ReasonWorkspaceNotLive), nil
	}
	allowed, err := s.nodeTypeAllowed(ctx, node)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return report.skip(ReasonNodeTypeDisabled), nil
	}
	if report.Source != s.resolver.DefaultPreset() {
		return report.skip(ReasonNotDefaultPreset), nil
	}
	return s.sync(ctx, report, node, workspace, true)
}

// SyncNode propagates node to every sync preset in workspace regardless of the
// event gates. With translate unset, translatable properties are copied as is.
func (s *Service) SyncNode(ctx context.Context, node interfaces.Node, workspace string, translate bool) (*Report, error) {
	if node == nil {
		return nil, ErrNodeRequired
	}
	if s.guard.Owns(ctx) {
		return nil, goerrors.Wrap(ErrReentrant, goerrors.CategoryConflict, "manual sync rejected").
			WithTextCode(textCodeReentrant)
	}
	report := &Report{
		Trigger: TriggerManual,
		NodeID:  node.Identifier(),
		Source:  node.DimensionValue(s.resolver.Dimension()),
	}
	return s.sync(ctx, report, node, workspace, translate)
}

func (s *Service) sync(ctx context.Context, report *Report, node interfaces.Node, workspace string, translate bool) (*Report, error) {
	targets := s.resolver.SyncTargets()
	if len(targets) == 0 {
		return report.skip(ReasonNoSyncTargets), nil
	}

	ctx, release := s.guard.Enter(ctx)
	defer release()
	contexts := contextcache.New(s.factory, s.resolver.Dimension())
	defer contexts.Reset()
	ctx = logging.ContextWithPass(ctx, string(report.Trigger), node.Identifier())
	passLogger := s.logger.WithContext(ctx)

	passLogger.Info("sync.publish.start",
		"node_id", node.Identifier().String(),
		"source_locale", report.Source,
		"workspace", workspace,
		"removed", node.Removed(),
		"targets", len(targets),
	)
	for _, preset := range targets {
		logger := logging.WithNodeContext(passLogger, node.Identifier(), report.Source, preset)
		if preset == report.Source {
			report.add(preset, OutcomeSkipped, ReasonSourcePreset, nil)
			continue
		}
		var err error
		if node.Removed() {
			err = s.removeVariant(ctx, contexts, report, node, preset, workspace)
		} else {
			err = s.syncVariant(ctx, contexts, report, node, preset, workspace, translate)
		}
		if err != nil {
			logger.Error("sync.preset.failed", "error", err)
			return report, err
		}
		last := report.Presets[len(report.Presets)-1]
		logger.Debug("sync.preset.completed", "outcome", last.Outcome, "reason", last.Reason)
	}
	passLogger.Info("sync.publish.completed",
		"node_id", node.Identifier().String(),
		"presets", len(report.Presets),
	)
	return report, nil
}

func (s *Service) syncVariant(ctx context.Context, contexts *contextcache.Cache, report *Report, node interfaces.Node, preset, workspace string, translate bool) error {
	accessCtx, err := contexts.Get(ctx, preset, report.Source, workspace)
	if err != nil {
		return collaboratorError(err, "access context construction failed")
	}
	accessCtx.FlushCache()
	variant, err := accessCtx.AdoptNode(ctx, node, false)
	if err != nil {
		return collaboratorError(err, "variant adoption failed")
	}

	result, err := s.reconciler.Reconcile(ctx, reconcile.Request{
		Source:        node,
		Target:        variant,
		TargetContext: accessCtx,
		Translate:     translate,
	})
	if err != nil {
		return err
	}
	accessCtx.FlushCache()

	if err := s.publisher.PublishNode(ctx, variant); err != nil {
		return collaboratorError(err, "variant publish failed")
	}
	if err := s.publisher.PersistPendingChanges(ctx); err != nil {
		return collaboratorError(err, "persisting pending changes failed")
	}
	outcome, reason := reconciledOutcome(result)
	report.add(preset, outcome, reason, result)
	return nil
}

func (s *Service) removeVariant(ctx context.Context, contexts *contextcache.Cache, report *Report, node interfaces.Node, preset, workspace string) error {
	accessCtx, err := contexts.Get(ctx, preset, report.Source, workspace)
	if err != nil {
		return collaboratorError(err, "access context construction failed")
	}
	accessCtx.FlushCache()
	variant, err := accessCtx.FindByIdentifier(ctx, node.Identifier())
	if err != nil && !errors.Is(err, interfaces.ErrNodeNotFound) {
		return collaboratorError(err, "variant lookup failed")
	}
	if variant == nil || variant.DimensionValue(s.resolver.Dimension()) != preset {
		report.add(preset, OutcomeSkipped, ReasonTargetMissing, nil)
		return nil
	}
	if err := variant.SetRemoved(ctx, true); err != nil {
		return collaboratorError(err, "marking variant removed failed")
	}
	accessCtx.FlushCache()
	if err := s.publisher.PersistPendingChanges(ctx); err != nil {
		return collaboratorError(err, "persisting pending changes failed")
	}
	report.add(preset, OutcomeRemoved, "", nil)
	return nil
}

func (s *Service) gate(ctx context.Context) (string, bool) {
	if !s.enabled {
		return ReasonDisabled, false
	}
	if s.guard.Owns(ctx) {
		return ReasonReentrant, false
	}
	return "", true
}

func (s *Service) nodeTypeAllowed(ctx context.Context, node interfaces.Node) (bool, error) {
	nodeType, err := s.registry.Get(ctx, node.NodeType())
	if err != nil {
		return false, err
	}
	return nodeType.AutomaticTranslationEnabled(), nil
}

func reconciledOutcome(result *reconcile.Result) (Outcome, string) {
	if result != nil && result.Skipped {
		return OutcomeSkipped, ReasonReconcileSkipped
	}
	return OutcomeReconciled, ""
}

func collaboratorError(err error, message string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithTextCode(textCodeCollaboratorFailed)
}
