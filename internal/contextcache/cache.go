// Package contextcache memoizes access contexts per (source, target, workspace)
// for the lifetime of one unit of work.
package contextcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// ErrFactoryRequired is returned when the cache has no context factory.
var ErrFactoryRequired = errors.New("contextcache: context factory is required")

// Key identifies a cached access context. Source is empty when only the target is visible.
type Key struct {
	Source    string
	Target    string
	Workspace string
}

// Cache builds and memoizes access contexts. It is not safe for concurrent use;
// scope one instance per transaction.
type Cache struct {
	factory   interfaces.ContextFactory
	dimension string
	entries   map[Key]interfaces.AccessContext
}

// New returns a cache building contexts for the named dimension through factory.
func New(factory interfaces.ContextFactory, dimension string) *Cache {
	return &Cache{
		factory:   factory,
		dimension: dimension,
		entries:   map[Key]interfaces.AccessContext{},
	}
}

// Get returns the context for target (falling back to source) in workspace,
// constructing it on first use.
func (c *Cache) Get(ctx context.Context, target, source, workspace string) (interfaces.AccessContext, error) {
	key := Key{Source: source, Target: target, Workspace: workspace}
	if cached, ok := c.entries[key]; ok {
		return cached, nil
	}
	if c.factory == nil {
		return nil, ErrFactoryRequired
	}

	values := []string{target}
	if source != "" && source != target {
		values = append(values, source)
	}
	accessCtx, err := c.factory.NewContext(ctx, interfaces.ContextOptions{
		Workspace:        workspace,
		Dimensions:       map[string][]string{c.dimension: values},
		TargetDimensions: map[string]string{c.dimension: target},
		Visibility:       interfaces.AllVisible(),
	})
	if err != nil {
		return nil, fmt.Errorf("contextcache: build context %s->%s@%s: %w", source, target, workspace, err)
	}
	c.entries[key] = accessCtx
	return accessCtx, nil
}

// Len reports the number of cached contexts.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Reset drops every cached context.
func (c *Cache) Reset() {
	clear(c.entries)
}
