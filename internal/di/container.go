package di

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/commands"
	synccmd "github.com/goliatone/go-cms-autotranslate/internal/commands/sync"
	"github.com/goliatone/go-cms-autotranslate/internal/contentrepo"
	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/logging/console"
	"github.com/goliatone/go-cms-autotranslate/internal/logging/gologger"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/reconcile"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/internal/synchronizer"
	"github.com/goliatone/go-cms-autotranslate/internal/translator"
	"github.com/goliatone/go-cms-autotranslate/internal/translator/deepl"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the synchronizer, its collaborators and the command handlers.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	translator     interfaces.Translator
	nodeTypes      []*nodetypes.NodeType

	bunDB         *bun.DB
	ownsDB        bool
	store         contentrepo.Store
	registry      nodetypes.Registry
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	resolver   *locales.Resolver
	repository *contentrepo.Repository
	reconciler *reconcile.Reconciler
	syncSvc    *synchronizer.Service

	adoptedHandler   *synccmd.NodeAdoptedHandler
	publishedHandler *synccmd.NodePublishedHandler
	syncHandler      *synccmd.SyncNodeHandler

	observers []synccmd.ReportObserver
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithTranslator overrides the configured translation provider. The container
// still wraps it in a translator.Gateway.
func WithTranslator(provider interfaces.Translator) Option {
	return func(c *Container) {
		c.translator = provider
	}
}

// WithBunDB binds an existing database for SQL storage and node type persistence.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithStore overrides the node store.
func WithStore(store contentrepo.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithRegistry overrides the node type registry.
func WithRegistry(registry nodetypes.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithNodeTypes registers node types in addition to the configured definition file.
func WithNodeTypes(types ...*nodetypes.NodeType) Option {
	return func(c *Container) {
		c.nodeTypes = append(c.nodeTypes, types...)
	}
}

// WithCache overrides the cache used by the persisted node type registry.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithReportObserver receives every synchronization report produced by hooks and commands.
func WithReportObserver(observer synccmd.ReportObserver) Option {
	return func(c *Container) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// NewContainer validates cfg and wires every module dependency.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLoggerProvider,
		c.configureStorage,
		c.configureCacheDefaults,
		c.configureRegistry,
		c.configureTranslator,
		c.configureServices,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.configureHooks()
	c.configureCommands()

	logging.SyncLogger(c.loggerProvider).Info("autotranslate.configured",
		"storage", storageDriver(c.Config),
		"translator", translatorProvider(c.Config),
		"sync_targets", c.resolver.SyncTargets(),
		"enabled", c.Config.Enabled,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider(context.Context) error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	driver := storageDriver(c.Config)
	if driver == runtimeconfig.StorageMemory && c.bunDB == nil {
		c.store = contentrepo.NewMemoryStore()
		return nil
	}
	if c.bunDB == nil {
		db, err := contentrepo.OpenDB(driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	store := contentrepo.NewBunStore(c.bunDB)
	if err := store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("autotranslate: create node schema: %w", err)
	}
	c.store = store
	return nil
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.NodeTypes.Persist || c.bunDB == nil {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.NodeTypes.CacheTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRegistry(ctx context.Context) error {
	types := append([]*nodetypes.NodeType(nil), c.nodeTypes...)
	if path := strings.TrimSpace(c.Config.NodeTypes.File); path != "" {
		loaded, err := nodetypes.LoadFile(path)
		if err != nil {
			return err
		}
		types = append(loaded, types...)
	}

	if c.registry != nil {
		if len(types) == 0 {
			return nil
		}
		registrar, ok := c.registry.(interface {
			Register(context.Context, ...*nodetypes.NodeType) error
		})
		if !ok {
			return fmt.Errorf("autotranslate: registry %T cannot register node types", c.registry)
		}
		return registrar.Register(ctx, types...)
	}

	if c.Config.NodeTypes.Persist && c.bunDB != nil {
		if err := nodetypes.CreateSchema(ctx, c.bunDB); err != nil {
			return fmt.Errorf("autotranslate: create node type schema: %w", err)
		}
		registry := nodetypes.NewBunRegistryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		if err := registry.Register(ctx, types...); err != nil {
			return err
		}
		c.registry = registry
		return nil
	}

	registry, err := nodetypes.NewMemoryRegistry(types...)
	if err != nil {
		return err
	}
	c.registry = registry
	return nil
}

// requestAttempts counts the first request on top of the configured retries,
// so zero retries means a single request.
func requestAttempts(cfg runtimeconfig.TranslatorConfig) uint {
	return cfg.MaxRetries + 1
}

func (c *Container) configureTranslator(context.Context) error {
	logger := logging.TranslatorLogger(c.loggerProvider)
	provider := c.translator
	if provider == nil {
		switch translatorProvider(c.Config) {
		case runtimeconfig.TranslatorDeepL:
			client, err := deepl.New(deepl.Config{
				BaseURL:     c.Config.Translator.BaseURL,
				AuthKey:     c.Config.Translator.AuthKey,
				Timeout:     c.Config.Translator.Timeout,
				MaxAttempts: requestAttempts(c.Config.Translator),
				IgnoreTags:  c.Config.Translator.IgnoreTags,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			provider = client
		default:
			provider = translator.Noop{}
		}
	}
	if _, wrapped := provider.(*translator.Gateway); !wrapped {
		provider = translator.NewGateway(provider, translator.WithLogger(logger))
	}
	c.translator = provider
	return nil
}

func (c *Container) configureServices(context.Context) error {
	resolver, err := locales.NewResolver(c.Config.Dimension)
	if err != nil {
		return err
	}
	c.resolver = resolver

	c.repository = contentrepo.New(c.store,
		contentrepo.WithLogger(logging.StoreLogger(c.loggerProvider)),
		contentrepo.WithLiveWorkspace(c.Config.LiveWorkspace),
		contentrepo.WithDimension(c.Config.Dimension.Name),
	)

	c.reconciler = reconcile.New(resolver, c.registry, c.translator,
		reconcile.WithLogger(logging.ReconcileLogger(c.loggerProvider)),
		reconcile.WithTranslateInlineEditables(c.Config.TranslateInlineEditables),
	)

	c.syncSvc = synchronizer.New(resolver, c.registry, c.repository, c.repository, c.reconciler,
		synchronizer.WithEnabled(c.Config.Enabled),
		synchronizer.WithLiveWorkspace(c.Config.LiveWorkspace),
		synchronizer.WithLogger(logging.SyncLogger(c.loggerProvider)),
	)
	return nil
}

// configureHooks forwards repository lifecycle events to the synchronizer.
// Events raised by a pass carry its context and are skipped by the service.
func (c *Container) configureHooks() {
	c.repository.OnPublish(func(ctx context.Context, node interfaces.Node, workspace string) error {
		report, err := c.syncSvc.OnNodePublished(ctx, node, workspace)
		if err != nil {
			return err
		}
		c.observe(ctx, report)
		return nil
	})
	c.repository.OnAdopt(func(ctx context.Context, node interfaces.Node, target interfaces.AccessContext, recursive bool) error {
		report, err := c.syncSvc.OnNodeAdopted(ctx, node, target, recursive)
		if err != nil {
			return err
		}
		c.observe(ctx, report)
		return nil
	})
}

func (c *Container) configureCommands() {
	logger := commands.CommandLogger(c.loggerProvider, "sync")
	timeout := c.Config.Commands.Timeout

	c.adoptedHandler = synccmd.NewNodeAdoptedHandler(c.syncSvc, c.repository, c.repository, c.Config.Dimension.Name, logger, c.observe,
		commands.WithTimeout[synccmd.NodeAdoptedCommand](timeout),
	)
	c.publishedHandler = synccmd.NewNodePublishedHandler(c.syncSvc, c.repository, logger, c.observe,
		commands.WithTimeout[synccmd.NodePublishedCommand](timeout),
	)
	c.syncHandler = synccmd.NewSyncNodeHandler(c.syncSvc, c.repository, logger, c.observe,
		commands.WithTimeout[synccmd.SyncNodeCommand](timeout),
	)
}

// observe hands report to observers. Reports for events raised by a pass itself
// are not forwarded.
func (c *Container) observe(ctx context.Context, report *synchronizer.Report) {
	if report == nil || (report.Skipped && report.Reason == synchronizer.ReasonReentrant) {
		return
	}
	for _, observer := range c.observers {
		observer(ctx, report)
	}
}

// LoggerProvider returns the resolved logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Translator returns the gateway wrapping the configured provider.
func (c *Container) Translator() interfaces.Translator { return c.translator }

// Registry returns the node type registry.
func (c *Container) Registry() nodetypes.Registry { return c.registry }

// Resolver returns the locale strategy resolver.
func (c *Container) Resolver() *locales.Resolver { return c.resolver }

// Repository returns the content repository the hooks are attached to.
func (c *Container) Repository() *contentrepo.Repository { return c.repository }

// Reconciler returns the variant reconciler.
func (c *Container) Reconciler() *reconcile.Reconciler { return c.reconciler }

// Synchronizer returns the synchronization service.
func (c *Container) Synchronizer() *synchronizer.Service { return c.syncSvc }

// NodeAdoptedHandler returns the adoption command handler.
func (c *Container) NodeAdoptedHandler() *synccmd.NodeAdoptedHandler { return c.adoptedHandler }

// NodePublishedHandler returns the publish command handler.
func (c *Container) NodePublishedHandler() *synccmd.NodePublishedHandler { return c.publishedHandler }

// SyncNodeHandler returns the manual synchronization command handler.
func (c *Container) SyncNodeHandler() *synccmd.SyncNodeHandler { return c.syncHandler }

// Close releases the database the container opened itself.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}

func storageDriver(cfg runtimeconfig.Config) string {
	return strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
}

func translatorProvider(cfg runtimeconfig.Config) string {
	return strings.ToLower(strings.TrimSpace(cfg.Translator.Provider))
}
