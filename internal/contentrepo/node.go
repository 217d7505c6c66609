package contentrepo

import (
	"context"
	"fmt"
	"maps"
	"path"
	"reflect"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

// Node is a repository backed variant. Nodes obtained through an AccessContext
// resolve parents through that context's locale fallbacks.
type Node struct {
	repo *Repository
	rec  *Record
	ctx  *AccessContext
}

var _ interfaces.Node = (*Node)(nil)

func (n *Node) Identifier() uuid.UUID { return n.rec.Identifier }
func (n *Node) Name() string          { return path.Base(n.rec.Path) }
func (n *Node) Path() string          { return n.rec.Path }
func (n *Node) ParentPath() string    { return parentPath(n.rec.Path) }
func (n *Node) Workspace() string     { return n.rec.Workspace }
func (n *Node) NodeType() string      { return n.rec.NodeType }
func (n *Node) Removed() bool         { return n.rec.Removed }

// Locale returns the dimension value the variant is stored in.
func (n *Node) Locale() string { return n.rec.Locale }

// Revision increments on every effective change.
func (n *Node) Revision() int { return n.rec.Revision }

func (n *Node) DimensionValue(dimension string) string {
	if dimension != n.repo.dimension {
		return ""
	}
	return n.rec.Locale
}

func (n *Node) Properties() map[string]any {
	return cloneProperties(n.rec.Properties)
}

func (n *Node) Property(name string) (any, bool) {
	value, ok := n.rec.Properties[name]
	return value, ok
}

// SetProperty writes value; equal values leave the revision untouched.
func (n *Node) SetProperty(_ context.Context, name string, value any) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: property name is required", ErrNodeInputInvalid)
	}
	n.repo.mu.Lock()
	defer n.repo.mu.Unlock()
	if current, ok := n.rec.Properties[name]; ok && reflect.DeepEqual(current, value) {
		return nil
	}
	if n.rec.Properties == nil {
		n.rec.Properties = map[string]any{}
	}
	n.rec.Properties[name] = value
	n.repo.touchLocked(n.rec)
	return nil
}

func (n *Node) Structure() interfaces.Structure {
	return n.rec.structure()
}

// SetStructure applies s; an identical structure is a no-op.
func (n *Node) SetStructure(_ context.Context, s interfaces.Structure) error {
	n.repo.mu.Lock()
	defer n.repo.mu.Unlock()
	if n.rec.structure().Equal(s) {
		return nil
	}
	n.rec.applyStructure(s)
	n.repo.touchLocked(n.rec)
	return nil
}

func (n *Node) SetRemoved(_ context.Context, removed bool) error {
	n.repo.mu.Lock()
	defer n.repo.mu.Unlock()
	if n.rec.Removed == removed {
		return nil
	}
	n.rec.Removed = removed
	n.repo.touchLocked(n.rec)
	return nil
}

// Parent returns nil for top level nodes.
func (n *Node) Parent(ctx context.Context) (interfaces.Node, error) {
	parent := n.ParentPath()
	if parent == "" || parent == "/" {
		return nil, nil
	}
	if n.ctx != nil {
		return n.ctx.findByPath(ctx, parent)
	}
	rec, err := n.repo.first(ctx, Filter{Workspace: n.rec.Workspace, Locale: n.rec.Locale, Path: parent})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNodeNotFound, parent)
	}
	return n.repo.wrap(rec, nil), nil
}

// MoveInto re-parents the variant and its descendants within its workspace and locale.
func (n *Node) MoveInto(ctx context.Context, parent interfaces.Node) error {
	if parent == nil {
		return fmt.Errorf("%w: parent is required", interfaces.ErrInvalidReference)
	}
	if parent.Workspace() != n.rec.Workspace {
		return fmt.Errorf("%w: parent belongs to workspace %s", interfaces.ErrInvalidReference, parent.Workspace())
	}
	oldPath := n.rec.Path
	if parent.Path() == oldPath || isDescendantPath(parent.Path(), oldPath) {
		return fmt.Errorf("%w: cannot move %s into itself", interfaces.ErrInvalidReference, oldPath)
	}
	newPath := NormalizePath(parent.Path() + "/" + n.Name())
	if newPath == oldPath {
		return nil
	}

	occupant, err := n.repo.first(ctx, Filter{Workspace: n.rec.Workspace, Locale: n.rec.Locale, Path: newPath})
	if err != nil {
		return err
	}
	if occupant != nil && occupant.ID != n.rec.ID {
		return fmt.Errorf("%w: %s", interfaces.ErrNodeExists, newPath)
	}
	descendants, err := n.repo.find(ctx, Filter{Workspace: n.rec.Workspace, Locale: n.rec.Locale, PathPrefix: oldPath})
	if err != nil {
		return err
	}

	n.repo.mu.Lock()
	defer n.repo.mu.Unlock()
	n.rec.Path = newPath
	n.repo.touchLocked(n.rec)
	for _, rec := range descendants {
		rec.Path = newPath + strings.TrimPrefix(rec.Path, oldPath)
		n.repo.touchLocked(rec)
	}
	return nil
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return maps.Clone(props)
}

func propertiesEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
