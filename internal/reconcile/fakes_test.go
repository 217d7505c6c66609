package reconcile

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
)

type fakeNode struct {
	id         uuid.UUID
	name       string
	parentPath string
	locale     string
	nodeType   string
	props      map[string]any
	structure  interfaces.Structure
	removed    bool
	parent     *fakeNode

	moveErr         error
	propertyWrites  []string
	structureWrites int
}

func newFakeNode(id uuid.UUID, name, locale string, parent *fakeNode) *fakeNode {
	n := &fakeNode{
		id:       id,
		name:     name,
		locale:   locale,
		nodeType: "page",
		props:    map[string]any{},
		parent:   parent,
	}
	if parent != nil {
		n.parentPath = parent.Path()
	}
	n.structure.NodeType = "page"
	return n
}

func (n *fakeNode) Identifier() uuid.UUID        { return n.id }
func (n *fakeNode) Name() string                 { return n.name }
func (n *fakeNode) ParentPath() string           { return n.parentPath }
func (n *fakeNode) Workspace() string            { return "live" }
func (n *fakeNode) DimensionValue(string) string { return n.locale }
func (n *fakeNode) NodeType() string             { return n.nodeType }
func (n *fakeNode) Removed() bool                { return n.removed }
func (n *fakeNode) Structure() interfaces.Structure {
	return n.structure
}

func (n *fakeNode) Path() string {
	if n.parentPath == "" {
		return "/" + n.name
	}
	return strings.TrimRight(n.parentPath, "/") + "/" + n.name
}

func (n *fakeNode) Properties() map[string]any {
	return maps.Clone(n.props)
}

func (n *fakeNode) Property(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

func (n *fakeNode) SetProperty(_ context.Context, name string, value any) error {
	n.props[name] = value
	n.propertyWrites = append(n.propertyWrites, name)
	return nil
}

func (n *fakeNode) SetStructure(_ context.Context, s interfaces.Structure) error {
	n.structure = s
	n.nodeType = s.NodeType
	n.structureWrites++
	return nil
}

func (n *fakeNode) Parent(context.Context) (interfaces.Node, error) {
	if n.parent == nil {
		return nil, nil
	}
	return n.parent, nil
}

func (n *fakeNode) MoveInto(_ context.Context, parent interfaces.Node) error {
	if n.moveErr != nil {
		return n.moveErr
	}
	p := parent.(*fakeNode)
	n.parent = p
	n.parentPath = p.Path()
	return nil
}

func (n *fakeNode) SetRemoved(_ context.Context, removed bool) error {
	n.removed = removed
	return nil
}

type fakeContext struct {
	locale string
	nodes  map[uuid.UUID]*fakeNode
}

func newFakeContext(locale string, nodes ...*fakeNode) *fakeContext {
	c := &fakeContext{locale: locale, nodes: map[uuid.UUID]*fakeNode{}}
	for _, n := range nodes {
		c.nodes[n.id] = n
	}
	return c
}

func (c *fakeContext) Workspace() string             { return "live" }
func (c *fakeContext) TargetDimension(string) string { return c.locale }
func (c *fakeContext) FlushCache()                   {}
func (c *fakeContext) FindByIdentifier(_ context.Context, id uuid.UUID) (interfaces.Node, error) {
	if n, ok := c.nodes[id]; ok {
		return n, nil
	}
	return nil, interfaces.ErrNodeNotFound
}

func (c *fakeContext) AdoptNode(_ context.Context, node interfaces.Node, _ bool) (interfaces.Node, error) {
	if n, ok := c.nodes[node.Identifier()]; ok {
		return n, nil
	}
	n := newFakeNode(node.Identifier(), node.Name(), c.locale, nil)
	c.nodes[n.id] = n
	return n, nil
}
