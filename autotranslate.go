package autotranslate

import (
	"context"

	synccmd "github.com/goliatone/go-cms-autotranslate/internal/commands/sync"
	"github.com/goliatone/go-cms-autotranslate/internal/contentrepo"
	"github.com/goliatone/go-cms-autotranslate/internal/di"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/synchronizer"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"
)

// Node exports the locale variant contract.
type Node = interfaces.Node

// Translator exports the translation provider contract.
type Translator = interfaces.Translator

// NodeType exports the node type schema.
type NodeType = nodetypes.NodeType

// PropertyDeclaration exports a node type property declaration.
type PropertyDeclaration = nodetypes.PropertyDeclaration

// Report exports the synchronization report.
type Report = synchronizer.Report

// Repository exports the content repository the synchronizer observes.
type Repository = *contentrepo.Repository

// NodeInput exports the node creation input.
type NodeInput = contentrepo.NodeInput

// Message types accepted by the command dispatcher.
type (
	NodeAdoptedCommand   = synccmd.NodeAdoptedCommand
	NodePublishedCommand = synccmd.NodePublishedCommand
	SyncNodeCommand      = synccmd.SyncNodeCommand
)

// Module is the entry point for hosts embedding automatic translation.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Repository returns the content repository whose publish and adopt events are synchronized.
func (m *Module) Repository() Repository {
	return m.container.Repository()
}

// Synchronizer returns the synchronization service.
func (m *Module) Synchronizer() *synchronizer.Service {
	return m.container.Synchronizer()
}

// Enabled reports the global automatic translation switch.
func (m *Module) Enabled() bool {
	if m == nil || m.container == nil {
		return false
	}
	return m.container.Synchronizer().Enabled()
}

// SyncNode propagates the locale variant of id in workspace to every sync preset.
func (m *Module) SyncNode(ctx context.Context, id uuid.UUID, workspace, locale string, translate bool) error {
	return m.container.SyncNodeHandler().Execute(ctx, SyncNodeCommand{
		NodeID:    id,
		Workspace: workspace,
		Locale:    locale,
		Translate: translate,
	})
}

// SubscribeCommands registers the sync handlers with the go-command dispatcher.
// The returned function removes the subscriptions.
func (m *Module) SubscribeCommands() func() {
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand(m.container.NodeAdoptedHandler()),
		dispatcher.SubscribeCommand(m.container.NodePublishedHandler()),
		dispatcher.SubscribeCommand(m.container.SyncNodeHandler()),
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
