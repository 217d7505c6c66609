package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNodeNotFound is returned when no variant exists for an identifier or path.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNodeExists is returned when a move or create would collide with another node.
	ErrNodeExists = errors.New("node already exists at target location")
	// ErrInvalidReference is returned when a move references an unusable parent.
	ErrInvalidReference = errors.New("invalid node reference")
)

// Structure groups the structural attributes copied verbatim between variants.
type Structure struct {
	NodeType      string
	Hidden        bool
	HiddenInIndex bool
	HiddenBefore  *time.Time
	HiddenAfter   *time.Time
	Index         int
}

// Equal reports whether two structures carry the same attribute values.
func (s Structure) Equal(other Structure) bool {
	return s.NodeType == other.NodeType &&
		s.Hidden == other.Hidden &&
		s.HiddenInIndex == other.HiddenInIndex &&
		s.Index == other.Index &&
		timesEqual(s.HiddenBefore, other.HiddenBefore) &&
		timesEqual(s.HiddenAfter, other.HiddenAfter)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Node is a single locale variant of a content node. The identifier is shared
// by every variant of the same conceptual node.
type Node interface {
	Identifier() uuid.UUID
	Name() string
	Path() string
	ParentPath() string
	Workspace() string
	DimensionValue(dimension string) string
	NodeType() string

	Properties() map[string]any
	Property(name string) (any, bool)
	SetProperty(ctx context.Context, name string, value any) error

	Structure() Structure
	SetStructure(ctx context.Context, structure Structure) error

	// Parent returns nil without error for root nodes.
	Parent(ctx context.Context) (Node, error)
	MoveInto(ctx context.Context, parent Node) error

	Removed() bool
	SetRemoved(ctx context.Context, removed bool) error
}

// VisibilityFlags widen what an access context may read.
type VisibilityFlags struct {
	InvisibleContentShown    bool
	RemovedContentShown      bool
	InaccessibleContentShown bool
}

// AllVisible returns flags that expose hidden, removed and inaccessible content.
func AllVisible() VisibilityFlags {
	return VisibilityFlags{
		InvisibleContentShown:    true,
		RemovedContentShown:      true,
		InaccessibleContentShown: true,
	}
}

// ContextOptions describes the access context requested from a ContextFactory.
//
// Dimensions lists, per dimension name, the values visible in lookup order
// (target first, then fallbacks). TargetDimensions names the value new
// variants are materialised in.
type ContextOptions struct {
	Workspace        string
	Dimensions       map[string][]string
	TargetDimensions map[string]string
	Visibility       VisibilityFlags
}

// AccessContext is a workspace and dimension bound view over the content repository.
type AccessContext interface {
	Workspace() string
	TargetDimension(dimension string) string
	FindByIdentifier(ctx context.Context, id uuid.UUID) (Node, error)
	// AdoptNode materialises the variant of node in the target dimensions,
	// returning the existing variant when present.
	AdoptNode(ctx context.Context, node Node, recursive bool) (Node, error)
	// FlushCache drops first-level lookups so later reads observe fresh state.
	FlushCache()
}

// ContextFactory constructs access contexts. Construction may be expensive.
type ContextFactory interface {
	NewContext(ctx context.Context, opts ContextOptions) (AccessContext, error)
}

// Publisher publishes variants and flushes pending repository writes.
type Publisher interface {
	PublishNode(ctx context.Context, node Node) error
	PersistPendingChanges(ctx context.Context) error
}
