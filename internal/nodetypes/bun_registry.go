package nodetypes

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const nodeTypeNamespace = "node_type"

// NewNodeTypeRepository creates a repository for NodeType records keyed by name.
func NewNodeTypeRepository(db *bun.DB) repository.Repository[*NodeType] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*NodeType]{
		NewRecord: func() *NodeType { return &NodeType{} },
		GetID: func(t *NodeType) uuid.UUID {
			return t.ID
		},
		SetID: func(t *NodeType, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(t *NodeType) string {
			return t.Name
		},
	})
}

// BunRegistry persists node types through go-repository-bun with optional caching.
type BunRegistry struct {
	repo         repository.Repository[*NodeType]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunRegistry creates a registry without caching.
func NewBunRegistry(db *bun.DB) *BunRegistry {
	return NewBunRegistryWithCache(db, nil, nil)
}

// NewBunRegistryWithCache creates a registry whose reads go through the cache service.
func NewBunRegistryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRegistry {
	base := NewNodeTypeRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = nodeTypeNamespace + cache.KeySeparator
	}
	return &BunRegistry{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

// Get resolves a node type by name.
func (r *BunRegistry) Get(ctx context.Context, name string) (*NodeType, error) {
	record, err := r.repo.GetByIdentifier(ctx, normalizeName(name))
	if err != nil {
		return nil, mapRepositoryError(err, name)
	}
	return record, nil
}

// List returns every stored node type.
func (r *BunRegistry) List(ctx context.Context) ([]*NodeType, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

// Register creates or updates node types by name.
func (r *BunRegistry) Register(ctx context.Context, types ...*NodeType) error {
	for _, nodeType := range types {
		if nodeType == nil {
			continue
		}
		name := normalizeName(nodeType.Name)
		if name == "" {
			return ErrNodeTypeNameRequired
		}
		record := cloneNodeType(nodeType)
		record.Name = name
		record.ID = identity.NodeTypeUUID(name)

		existing, err := r.repo.GetByIdentifier(ctx, name)
		switch {
		case err == nil:
			record.CreatedAt = existing.CreatedAt
			if _, err := r.repo.Update(ctx, record); err != nil {
				return fmt.Errorf("node type %s: %w", name, err)
			}
		case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
			if _, err := r.repo.Create(ctx, record); err != nil {
				return fmt.Errorf("node type %s: %w", name, err)
			}
		default:
			return fmt.Errorf("node type %s: %w", name, err)
		}
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached node type reads.
func (r *BunRegistry) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, name string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s", ErrNodeTypeNotFound, name)
	}
	return fmt.Errorf("node type repository error: %w", err)
}

// CreateSchema creates the node type table when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*NodeType)(nil)).IfNotExists().Exec(ctx)
	return err
}
