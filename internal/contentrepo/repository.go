package contentrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	// DefaultLiveWorkspace is the canonical published workspace.
	DefaultLiveWorkspace = "live"
	// DefaultDimension is the locale dimension name.
	DefaultDimension = "language"
)

// ErrNodeInputInvalid is returned when a node cannot be created from the given input.
var ErrNodeInputInvalid = errors.New("contentrepo: node input invalid")

// PublishHook observes published variants. The node belongs to the target workspace.
type PublishHook func(ctx context.Context, node interfaces.Node, workspace string) error

// AdoptHook observes AdoptNode. It receives the source node of each variant the
// call materialised, together with the context the variant was created in.
type AdoptHook func(ctx context.Context, node interfaces.Node, target interfaces.AccessContext, recursive bool) error

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLiveWorkspace overrides the workspace PublishNode copies into.
func WithLiveWorkspace(name string) Option {
	return func(r *Repository) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.liveWorkspace = trimmed
		}
	}
}

// WithDimension overrides the locale dimension name.
func WithDimension(name string) Option {
	return func(r *Repository) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.dimension = trimmed
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// Repository is a unit of work over a Store. Loaded and created records live in
// an identity map until PersistPendingChanges writes the dirty ones.
type Repository struct {
	store         Store
	logger        interfaces.Logger
	liveWorkspace string
	dimension     string
	now           func() time.Time

	mu      sync.Mutex
	records map[uuid.UUID]*Record
	dirty   map[uuid.UUID]struct{}

	hookMu       sync.RWMutex
	publishHooks []PublishHook
	adoptHooks   []AdoptHook
}

var (
	_ interfaces.ContextFactory = (*Repository)(nil)
	_ interfaces.Publisher      = (*Repository)(nil)
)

// New constructs a repository over store.
func New(store Store, opts ...Option) *Repository {
	if store == nil {
		store = NewMemoryStore()
	}
	r := &Repository{
		store:         store,
		logger:        logging.NoOp(),
		liveWorkspace: DefaultLiveWorkspace,
		dimension:     DefaultDimension,
		now:           func() time.Time { return time.Now().UTC() },
		records:       map[uuid.UUID]*Record{},
		dirty:         map[uuid.UUID]struct{}{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dimension returns the locale dimension name.
func (r *Repository) Dimension() string { return r.dimension }

// LiveWorkspace returns the canonical workspace name.
func (r *Repository) LiveWorkspace() string { return r.liveWorkspace }

// OnPublish registers a publish hook.
func (r *Repository) OnPublish(hook PublishHook) {
	if hook == nil {
		return
	}
	r.hookMu.Lock()
	r.publishHooks = append(r.publishHooks, hook)
	r.hookMu.Unlock()
}

// OnAdopt registers an adopt hook.
func (r *Repository) OnAdopt(hook AdoptHook) {
	if hook == nil {
		return
	}
	r.hookMu.Lock()
	r.adoptHooks = append(r.adoptHooks, hook)
	r.hookMu.Unlock()
}

// NodeInput describes a node variant created directly in a workspace.
type NodeInput struct {
	Identifier uuid.UUID
	Workspace  string
	Locale     string
	Path       string
	NodeType   string
	Properties map[string]any
	Structure  interfaces.Structure
	Removed    bool
}

// CreateNode stores a new variant. The identifier defaults to one derived from the path.
func (r *Repository) CreateNode(ctx context.Context, input NodeInput) (interfaces.Node, error) {
	input.Workspace = strings.TrimSpace(input.Workspace)
	input.Locale = strings.TrimSpace(input.Locale)
	input.Path = NormalizePath(input.Path)
	if input.Workspace == "" || input.Locale == "" || input.Path == "/" {
		return nil, fmt.Errorf("%w: workspace, locale and a non-root path are required", ErrNodeInputInvalid)
	}
	if input.NodeType == "" {
		input.NodeType = input.Structure.NodeType
	}
	if input.NodeType == "" {
		return nil, fmt.Errorf("%w: node type is required", ErrNodeInputInvalid)
	}
	if input.Identifier == uuid.Nil {
		input.Identifier = identity.NodeUUID(input.Path)
	}

	occupant, err := r.first(ctx, Filter{Workspace: input.Workspace, Locale: input.Locale, Path: input.Path})
	if err != nil {
		return nil, err
	}
	if occupant != nil && occupant.Identifier != input.Identifier {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNodeExists, input.Path)
	}
	existing, err := r.first(ctx, Filter{Workspace: input.Workspace, Locale: input.Locale, Identifier: input.Identifier})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s already has a %s variant", interfaces.ErrNodeExists, input.Identifier, input.Locale)
	}

	structure := input.Structure
	structure.NodeType = input.NodeType
	rec := &Record{
		ID:         identity.VariantUUID(input.Workspace, input.Identifier, input.Locale),
		Identifier: input.Identifier,
		Workspace:  input.Workspace,
		Locale:     input.Locale,
		Path:       input.Path,
		Properties: cloneProperties(input.Properties),
		Removed:    input.Removed,
		Revision:   1,
		UpdatedAt:  r.now(),
	}
	rec.applyStructure(structure)
	r.track(rec)
	return r.wrap(rec, nil), nil
}

// Get returns the variant of id in workspace and locale without fallbacks.
func (r *Repository) Get(ctx context.Context, workspace, locale string, id uuid.UUID) (interfaces.Node, error) {
	rec, err := r.first(ctx, Filter{Workspace: workspace, Locale: locale, Identifier: id})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s (%s/%s)", interfaces.ErrNodeNotFound, id, workspace, locale)
	}
	return r.wrap(rec, nil), nil
}

// GetByPath returns the variant stored at path in workspace and locale.
func (r *Repository) GetByPath(ctx context.Context, workspace, locale, nodePath string) (interfaces.Node, error) {
	rec, err := r.first(ctx, Filter{Workspace: workspace, Locale: locale, Path: NormalizePath(nodePath)})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s (%s/%s)", interfaces.ErrNodeNotFound, nodePath, workspace, locale)
	}
	return r.wrap(rec, nil), nil
}

// Variants lists every locale variant of id in workspace ordered by locale.
func (r *Repository) Variants(ctx context.Context, workspace string, id uuid.UUID) ([]interfaces.Node, error) {
	records, err := r.find(ctx, Filter{Workspace: workspace, Identifier: id})
	if err != nil {
		return nil, err
	}
	nodes := make([]interfaces.Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, r.wrap(rec, nil))
	}
	return nodes, nil
}

// PendingChanges reports the number of dirty records.
func (r *Repository) PendingChanges() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dirty)
}

// PersistPendingChanges writes dirty records to the store.
func (r *Repository) PersistPendingChanges(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]*Record, 0, len(r.dirty))
	for id := range r.dirty {
		if rec, ok := r.records[id]; ok {
			pending = append(pending, rec.clone())
		}
	}
	r.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	sortRecords(pending)

	if err := r.store.Save(ctx, pending...); err != nil {
		return err
	}

	r.mu.Lock()
	for _, rec := range pending {
		if current, ok := r.records[rec.ID]; ok && current.Revision == rec.Revision {
			delete(r.dirty, rec.ID)
		}
	}
	r.mu.Unlock()
	r.logger.Debug("store.persist.completed", "records", len(pending))
	return nil
}

// Clear drops the identity map. Unsaved changes are discarded.
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.records)
	clear(r.dirty)
}

// PublishNode copies node into the live workspace and notifies publish hooks.
func (r *Repository) PublishNode(ctx context.Context, node interfaces.Node) error {
	src, ok := node.(*Node)
	if !ok || src == nil {
		return fmt.Errorf("%w: unsupported node implementation %T", interfaces.ErrInvalidReference, node)
	}

	published := src
	if src.rec.Workspace != r.liveWorkspace {
		var err error
		published, err = r.copyInto(ctx, src.rec, r.liveWorkspace)
		if err != nil {
			return err
		}
	}
	r.logger.Info("store.publish.completed",
		"node_id", published.rec.Identifier.String(),
		"locale", published.rec.Locale,
		"path", published.rec.Path,
		"from_workspace", src.rec.Workspace,
	)

	r.hookMu.RLock()
	hooks := append([]PublishHook(nil), r.publishHooks...)
	r.hookMu.RUnlock()
	for _, hook := range hooks {
		if err := hook(ctx, published, r.liveWorkspace); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) copyInto(ctx context.Context, src *Record, workspace string) (*Node, error) {
	existing, err := r.first(ctx, Filter{Workspace: workspace, Locale: src.Locale, Identifier: src.Identifier})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		occupant, err := r.first(ctx, Filter{Workspace: workspace, Locale: src.Locale, Path: src.Path})
		if err != nil {
			return nil, err
		}
		if occupant != nil {
			return nil, fmt.Errorf("%w: %s in %s", interfaces.ErrNodeExists, src.Path, workspace)
		}
		copied := src.clone()
		copied.ID = identity.VariantUUID(workspace, src.Identifier, src.Locale)
		copied.Workspace = workspace
		copied.Revision = 1
		copied.UpdatedAt = r.now()
		r.track(copied)
		return r.wrap(copied, nil), nil
	}

	r.mu.Lock()
	changed := existing.Path != src.Path ||
		existing.Removed != src.Removed ||
		!existing.structure().Equal(src.structure()) ||
		!propertiesEqual(existing.Properties, src.Properties)
	if changed {
		existing.Path = src.Path
		existing.Removed = src.Removed
		existing.applyStructure(src.structure())
		existing.Properties = cloneProperties(src.Properties)
		r.touchLocked(existing)
	}
	r.mu.Unlock()
	return r.wrap(existing, nil), nil
}

// NewContext implements interfaces.ContextFactory.
func (r *Repository) NewContext(_ context.Context, opts interfaces.ContextOptions) (interfaces.AccessContext, error) {
	workspace := strings.TrimSpace(opts.Workspace)
	if workspace == "" {
		return nil, fmt.Errorf("%w: workspace is required", interfaces.ErrInvalidReference)
	}
	target := strings.TrimSpace(opts.TargetDimensions[r.dimension])
	values := opts.Dimensions[r.dimension]
	if target == "" && len(values) > 0 {
		target = values[0]
	}
	if target == "" {
		return nil, fmt.Errorf("%w: target %s dimension is required", interfaces.ErrInvalidReference, r.dimension)
	}
	lookup := []string{target}
	for _, value := range values {
		if value != "" && value != target && !containsString(lookup, value) {
			lookup = append(lookup, value)
		}
	}
	return &AccessContext{
		repo:       r,
		workspace:  workspace,
		target:     target,
		values:     lookup,
		visibility: opts.Visibility,
		firstLevel: map[uuid.UUID]*Node{},
	}, nil
}

func (r *Repository) find(ctx context.Context, filter Filter) ([]*Record, error) {
	stored, err := r.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{}, len(stored))
	out := make([]*Record, 0, len(stored))
	for _, rec := range stored {
		tracked, ok := r.records[rec.ID]
		if !ok {
			r.records[rec.ID] = rec
			tracked = rec
		}
		seen[rec.ID] = struct{}{}
		if filter.matches(tracked) {
			out = append(out, tracked)
		}
	}
	for id, rec := range r.records {
		if _, ok := seen[id]; ok {
			continue
		}
		if filter.matches(rec) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *Repository) first(ctx context.Context, filter Filter) (*Record, error) {
	records, err := r.find(ctx, filter)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (r *Repository) track(rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	r.dirty[rec.ID] = struct{}{}
}

func (r *Repository) touchLocked(rec *Record) {
	rec.Revision++
	rec.UpdatedAt = r.now()
	r.dirty[rec.ID] = struct{}{}
}

func (r *Repository) wrap(rec *Record, accessCtx *AccessContext) *Node {
	return &Node{repo: r, rec: rec, ctx: accessCtx}
}

func (r *Repository) adoptHookList() []AdoptHook {
	r.hookMu.RLock()
	defer r.hookMu.RUnlock()
	return append([]AdoptHook(nil), r.adoptHooks...)
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}

func sortedPropertyNames(props map[string]any) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
