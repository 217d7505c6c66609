package contentrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-cms-autotranslate/internal/identity"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

// Fixture seeds a repository from a YAML document.
//
//	workspace: user-admin
//	nodes:
//	  - key: home
//	    path: /sites/home
//	    locale: en_US
//	    nodeType: page
//	    properties:
//	      title: Home
type Fixture struct {
	Workspace string        `yaml:"workspace"`
	Nodes     []FixtureNode `yaml:"nodes"`
}

// FixtureNode is a single variant in a fixture.
type FixtureNode struct {
	Key           string         `yaml:"key"`
	Path          string         `yaml:"path"`
	Locale        string         `yaml:"locale"`
	Workspace     string         `yaml:"workspace"`
	NodeType      string         `yaml:"nodeType"`
	Hidden        bool           `yaml:"hidden"`
	HiddenInIndex bool           `yaml:"hiddenInIndex"`
	HiddenBefore  *time.Time     `yaml:"hiddenBefore"`
	HiddenAfter   *time.Time     `yaml:"hiddenAfter"`
	Index         int            `yaml:"index"`
	Removed       bool           `yaml:"removed"`
	Properties    map[string]any `yaml:"properties"`
}

// ErrFixtureInvalid is returned when a fixture cannot be decoded.
var ErrFixtureInvalid = errors.New("contentrepo: fixture invalid")

// LoadFixture decodes a fixture document.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.NewDecoder(r).Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrFixtureInvalid, err)
	}
	for i, node := range fixture.Nodes {
		if strings.TrimSpace(node.Path) == "" || strings.TrimSpace(node.Locale) == "" || strings.TrimSpace(node.NodeType) == "" {
			return nil, fmt.Errorf("%w: node %d requires path, locale and nodeType", ErrFixtureInvalid, i)
		}
	}
	return &fixture, nil
}

// LoadFixtureFile decodes a fixture file.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixture(f)
}

// Identifier returns the seed of the aggregate identifier: the slugged key, or
// the normalized path when no key is set.
func (n FixtureNode) Identifier() string {
	key := strings.TrimSpace(n.Key)
	if key == "" {
		return NormalizePath(n.Path)
	}
	normalized, err := slug.Normalize(key)
	if err != nil || normalized == "" {
		return key
	}
	return normalized
}

// Apply creates every fixture node in repo.
func (f *Fixture) Apply(ctx context.Context, repo *Repository) ([]interfaces.Node, error) {
	nodes := make([]interfaces.Node, 0, len(f.Nodes))
	for _, entry := range f.Nodes {
		workspace := entry.Workspace
		if workspace == "" {
			workspace = f.Workspace
		}
		if workspace == "" {
			workspace = repo.LiveWorkspace()
		}
		node, err := repo.CreateNode(ctx, NodeInput{
			Identifier: identity.NodeUUID(entry.Identifier()),
			Workspace:  workspace,
			Locale:     entry.Locale,
			Path:       entry.Path,
			NodeType:   entry.NodeType,
			Properties: entry.Properties,
			Removed:    entry.Removed,
			Structure: interfaces.Structure{
				NodeType:      entry.NodeType,
				Hidden:        entry.Hidden,
				HiddenInIndex: entry.HiddenInIndex,
				HiddenBefore:  entry.HiddenBefore,
				HiddenAfter:   entry.HiddenAfter,
				Index:         entry.Index,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("fixture node %s: %w", entry.Path, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Describe renders a variant as "path [locale] key=value ..." with sorted properties.
func Describe(node interfaces.Node, dimension string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", node.Path(), node.DimensionValue(dimension))
	if node.Removed() {
		b.WriteString(" (removed)")
	}
	props := node.Properties()
	for _, name := range sortedPropertyNames(props) {
		fmt.Fprintf(&b, " %s=%v", name, props[name])
	}
	return b.String()
}
