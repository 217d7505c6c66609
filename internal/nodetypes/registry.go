package nodetypes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
)

var (
	// ErrNodeTypeNotFound is returned when a node type is not registered.
	ErrNodeTypeNotFound = errors.New("nodetypes: node type not found")
	// ErrNodeTypeNameRequired is returned when registering an unnamed node type.
	ErrNodeTypeNameRequired = errors.New("nodetypes: node type name is required")
)

// Registry resolves node type schemas by name.
type Registry interface {
	Get(ctx context.Context, name string) (*NodeType, error)
}

// MemoryRegistry keeps node types in process memory.
type MemoryRegistry struct {
	mu    sync.RWMutex
	types map[string]*NodeType
}

// NewMemoryRegistry constructs a registry seeded with types.
func NewMemoryRegistry(types ...*NodeType) (*MemoryRegistry, error) {
	reg := &MemoryRegistry{types: map[string]*NodeType{}}
	if err := reg.Register(context.Background(), types...); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register adds or replaces node types.
func (r *MemoryRegistry) Register(_ context.Context, types ...*NodeType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, nodeType := range types {
		if nodeType == nil {
			continue
		}
		name := normalizeName(nodeType.Name)
		if name == "" {
			return ErrNodeTypeNameRequired
		}
		copied := cloneNodeType(nodeType)
		copied.Name = name
		copied.ID = identity.NodeTypeUUID(name)
		r.types[name] = copied
	}
	return nil
}

// Get returns a copy of the named node type.
func (r *MemoryRegistry) Get(_ context.Context, name string) (*NodeType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodeType, ok := r.types[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeTypeNotFound, name)
	}
	return cloneNodeType(nodeType), nil
}

// Names lists registered node types in lexical order.
func (r *MemoryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneNodeType(src *NodeType) *NodeType {
	if src == nil {
		return nil
	}
	out := *src
	if src.AutomaticTranslation != nil {
		out.AutomaticTranslation = Bool(*src.AutomaticTranslation)
	}
	if src.Properties != nil {
		out.Properties = make(map[string]PropertyDeclaration, len(src.Properties))
		for name, decl := range src.Properties {
			copied := decl
			if decl.AutomaticTranslation != nil {
				copied.AutomaticTranslation = Bool(*decl.AutomaticTranslation)
			}
			if decl.TranslateOnAdoption != nil {
				copied.TranslateOnAdoption = Bool(*decl.TranslateOnAdoption)
			}
			out.Properties[name] = copied
		}
	}
	return &out
}
