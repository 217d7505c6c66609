package contentrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

// AccessContext is a workspace bound view that resolves nodes in the target
// locale first and then in each fallback locale.
type AccessContext struct {
	repo       *Repository
	workspace  string
	target     string
	values     []string
	visibility interfaces.VisibilityFlags
	firstLevel map[uuid.UUID]*Node
}

var _ interfaces.AccessContext = (*AccessContext)(nil)

// Workspace implements interfaces.AccessContext.
func (c *AccessContext) Workspace() string { return c.workspace }

// TargetDimension implements interfaces.AccessContext.
func (c *AccessContext) TargetDimension(dimension string) string {
	if dimension != c.repo.dimension {
		return ""
	}
	return c.target
}

// Locales returns the lookup order, target first.
func (c *AccessContext) Locales() []string {
	return append([]string(nil), c.values...)
}

// FlushCache implements interfaces.AccessContext.
func (c *AccessContext) FlushCache() {
	clear(c.firstLevel)
}

// FindByIdentifier resolves id through the locale fallback chain. Results are
// cached until FlushCache.
func (c *AccessContext) FindByIdentifier(ctx context.Context, id uuid.UUID) (interfaces.Node, error) {
	if cached, ok := c.firstLevel[id]; ok {
		return cached, nil
	}
	for _, locale := range c.values {
		rec, err := c.repo.first(ctx, Filter{Workspace: c.workspace, Locale: locale, Identifier: id})
		if err != nil {
			return nil, err
		}
		if rec == nil || !c.visible(rec) {
			continue
		}
		node := c.repo.wrap(rec, c)
		c.firstLevel[id] = node
		return node, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", interfaces.ErrNodeNotFound, id, c.workspace)
}

func (c *AccessContext) findByPath(ctx context.Context, nodePath string) (*Node, error) {
	for _, locale := range c.values {
		rec, err := c.repo.first(ctx, Filter{Workspace: c.workspace, Locale: locale, Path: nodePath})
		if err != nil {
			return nil, err
		}
		if rec != nil && c.visible(rec) {
			return c.repo.wrap(rec, c), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", interfaces.ErrNodeNotFound, nodePath, c.workspace)
}

func (c *AccessContext) visible(rec *Record) bool {
	if rec.Removed && !c.visibility.RemovedContentShown {
		return false
	}
	if rec.Hidden && !c.visibility.InvisibleContentShown {
		return false
	}
	return true
}

// AdoptNode returns the target locale variant of node, materialising it from
// node when absent. With recursive set, descendants of node are adopted too.
func (c *AccessContext) AdoptNode(ctx context.Context, node interfaces.Node, recursive bool) (interfaces.Node, error) {
	if node == nil {
		return nil, interfaces.ErrInvalidReference
	}
	src, ok := node.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported node implementation %T", interfaces.ErrInvalidReference, node)
	}

	adopted, created, err := c.adoptRecord(ctx, src.rec)
	if err != nil {
		return nil, err
	}
	var sources []*Node
	if created {
		sources = append(sources, src)
	}

	if recursive {
		descendants, err := c.repo.find(ctx, Filter{Workspace: src.rec.Workspace, Locale: src.rec.Locale, PathPrefix: src.rec.Path})
		if err != nil {
			return nil, err
		}
		for _, rec := range descendants {
			_, childCreated, err := c.adoptRecord(ctx, rec)
			if err != nil {
				if errors.Is(err, interfaces.ErrNodeExists) {
					c.repo.logger.Warn("store.adopt.skipped", "path", rec.Path, "error", err)
					continue
				}
				return nil, err
			}
			if childCreated {
				sources = append(sources, c.repo.wrap(rec, nil))
			}
		}
	}

	for _, source := range sources {
		for _, hook := range c.repo.adoptHookList() {
			if err := hook(ctx, source, c, recursive); err != nil {
				return nil, err
			}
		}
	}
	return adopted, nil
}

func (c *AccessContext) adoptRecord(ctx context.Context, src *Record) (*Node, bool, error) {
	existing, err := c.repo.first(ctx, Filter{Workspace: c.workspace, Locale: c.target, Identifier: src.Identifier})
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return c.repo.wrap(existing, c), false, nil
	}

	occupant, err := c.repo.first(ctx, Filter{Workspace: c.workspace, Locale: c.target, Path: src.Path})
	if err != nil {
		return nil, false, err
	}
	if occupant != nil {
		return nil, false, fmt.Errorf("%w: %s (%s)", interfaces.ErrNodeExists, src.Path, c.target)
	}

	rec := src.clone()
	rec.ID = identity.VariantUUID(c.workspace, src.Identifier, c.target)
	rec.Workspace = c.workspace
	rec.Locale = c.target
	rec.Removed = false
	rec.Revision = 1
	rec.UpdatedAt = c.repo.now()
	c.repo.track(rec)
	delete(c.firstLevel, src.Identifier)
	c.repo.logger.Debug("store.adopt.created",
		"node_id", src.Identifier.String(),
		"source_locale", src.Locale,
		"target_locale", c.target,
		"path", rec.Path,
	)
	return c.repo.wrap(rec, c), true, nil
}
