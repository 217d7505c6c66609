package synccmd

import (
	"context"

	"github.com/goliatone/go-cms-autotranslate/internal/commands"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/synchronizer"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const (
	adoptedOperation   = "sync.node_adopted"
	publishedOperation = "sync.node_published"
	syncOperation      = "sync.sync_node"
)

var (
	_ command.Commander[NodeAdoptedCommand]   = (*NodeAdoptedHandler)(nil)
	_ command.Commander[NodePublishedCommand] = (*NodePublishedHandler)(nil)
	_ command.Commander[SyncNodeCommand]      = (*SyncNodeHandler)(nil)
)

// Synchronizer is the event surface the handlers drive.
type Synchronizer interface {
	OnNodeAdopted(ctx context.Context, node interfaces.Node, target interfaces.AccessContext, recursive bool) (*synchronizer.Report, error)
	OnNodePublished(ctx context.Context, node interfaces.Node, workspace string) (*synchronizer.Report, error)
	SyncNode(ctx context.Context, node interfaces.Node, workspace string, translate bool) (*synchronizer.Report, error)
}

// NodeLocator loads a single variant.
type NodeLocator interface {
	Get(ctx context.Context, workspace, locale string, id uuid.UUID) (interfaces.Node, error)
}

// ReportObserver receives the report of every successful execution.
type ReportObserver func(ctx context.Context, report *synchronizer.Report)

// NodeAdoptedHandler forwards adoption events to the synchronizer.
type NodeAdoptedHandler struct {
	inner *commands.Handler[NodeAdoptedCommand]
}

// NewNodeAdoptedHandler builds the target context from factory and runs the once strategy.
func NewNodeAdoptedHandler(service Synchronizer, nodes NodeLocator, factory interfaces.ContextFactory, dimension string, logger interfaces.Logger, observe ReportObserver, opts ...commands.HandlerOption[NodeAdoptedCommand]) *NodeAdoptedHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg NodeAdoptedCommand) error {
		source, err := nodes.Get(ctx, msg.Workspace, msg.SourceLocale, msg.NodeID)
		if err != nil {
			return err
		}
		target, err := factory.NewContext(ctx, interfaces.ContextOptions{
			Workspace:        msg.Workspace,
			Dimensions:       map[string][]string{dimension: {msg.TargetLocale, msg.SourceLocale}},
			TargetDimensions: map[string]string{dimension: msg.TargetLocale},
			Visibility:       interfaces.AllVisible(),
		})
		if err != nil {
			return err
		}
		report, err := service.OnNodeAdopted(ctx, source, target, msg.Recursive)
		if err != nil {
			return err
		}
		finish(ctx, logger, observe, report)
		return nil
	}

	handlerOpts := []commands.HandlerOption[NodeAdoptedCommand]{
		commands.WithLogger[NodeAdoptedCommand](logger),
		commands.WithOperation[NodeAdoptedCommand](adoptedOperation),
		commands.WithMessageFields(func(msg NodeAdoptedCommand) map[string]any {
			return map[string]any{
				"node_id":       msg.NodeID.String(),
				"workspace":     msg.Workspace,
				"source_locale": msg.SourceLocale,
				"target_locale": msg.TargetLocale,
			}
		}),
	}
	return &NodeAdoptedHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[NodeAdoptedCommand].
func (h *NodeAdoptedHandler) Execute(ctx context.Context, msg NodeAdoptedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// NodePublishedHandler forwards publish events to the synchronizer.
type NodePublishedHandler struct {
	inner *commands.Handler[NodePublishedCommand]
}

// NewNodePublishedHandler constructs a handler wired to service.
func NewNodePublishedHandler(service Synchronizer, nodes NodeLocator, logger interfaces.Logger, observe ReportObserver, opts ...commands.HandlerOption[NodePublishedCommand]) *NodePublishedHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg NodePublishedCommand) error {
		node, err := nodes.Get(ctx, msg.Workspace, msg.Locale, msg.NodeID)
		if err != nil {
			return err
		}
		report, err := service.OnNodePublished(ctx, node, msg.Workspace)
		if err != nil {
			return err
		}
		finish(ctx, logger, observe, report)
		return nil
	}

	handlerOpts := []commands.HandlerOption[NodePublishedCommand]{
		commands.WithLogger[NodePublishedCommand](logger),
		commands.WithOperation[NodePublishedCommand](publishedOperation),
		commands.WithMessageFields(func(msg NodePublishedCommand) map[string]any {
			return map[string]any{
				"node_id":   msg.NodeID.String(),
				"workspace": msg.Workspace,
				"locale":    msg.Locale,
			}
		}),
	}
	return &NodePublishedHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[NodePublishedCommand].
func (h *NodePublishedHandler) Execute(ctx context.Context, msg NodePublishedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncNodeHandler runs manual propagation.
type SyncNodeHandler struct {
	inner *commands.Handler[SyncNodeCommand]
}

// NewSyncNodeHandler constructs a handler wired to service.
func NewSyncNodeHandler(service Synchronizer, nodes NodeLocator, logger interfaces.Logger, observe ReportObserver, opts ...commands.HandlerOption[SyncNodeCommand]) *SyncNodeHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SyncNodeCommand) error {
		node, err := nodes.Get(ctx, msg.Workspace, msg.Locale, msg.NodeID)
		if err != nil {
			return err
		}
		report, err := service.SyncNode(ctx, node, msg.Workspace, msg.Translate)
		if err != nil {
			return err
		}
		finish(ctx, logger, observe, report)
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncNodeCommand]{
		commands.WithLogger[SyncNodeCommand](logger),
		commands.WithOperation[SyncNodeCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncNodeCommand) map[string]any {
			fields := map[string]any{
				"node_id":   msg.NodeID.String(),
				"workspace": msg.Workspace,
				"locale":    msg.Locale,
			}
			if msg.Translate {
				fields["translate"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncNodeCommand](logger)),
	}
	return &SyncNodeHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[SyncNodeCommand].
func (h *SyncNodeHandler) Execute(ctx context.Context, msg SyncNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

func finish(ctx context.Context, logger interfaces.Logger, observe ReportObserver, report *synchronizer.Report) {
	if report == nil {
		return
	}
	fields := map[string]any{
		"trigger": string(report.Trigger),
		"presets": len(report.Presets),
	}
	if report.Skipped {
		fields["skipped"] = report.Reason
	}
	logging.WithFields(logger, fields).Info("sync.command.completed")
	if observe != nil {
		observe(ctx, report)
	}
}
