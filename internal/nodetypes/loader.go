package nodetypes

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-cms-autotranslate/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var definitionSchema []byte

var compiledDefinitionSchema = validation.MustCompileSchema("node_types.schema.json", definitionSchema)

// ErrDefinitionInvalid is returned when a node type document fails schema validation.
var ErrDefinitionInvalid = errors.New("nodetypes: definition document is invalid")

type definitionDocument struct {
	NodeTypes []*NodeType `json:"nodeTypes"`
}

// LoadYAML decodes and validates a node type definition document.
func LoadYAML(r io.Reader) ([]*NodeType, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrDefinitionInvalid, err)
	}
	var doc definitionDocument
	if err := compiledDefinitionSchema.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinitionInvalid, err)
	}

	seen := make(map[string]struct{}, len(doc.NodeTypes))
	for _, nodeType := range doc.NodeTypes {
		nodeType.Name = normalizeName(nodeType.Name)
		if _, dup := seen[nodeType.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate node type %q", ErrDefinitionInvalid, nodeType.Name)
		}
		seen[nodeType.Name] = struct{}{}
		if nodeType.Properties == nil {
			nodeType.Properties = map[string]PropertyDeclaration{}
		}
	}
	return doc.NodeTypes, nil
}

// LoadFile reads node type definitions from a YAML file.
func LoadFile(path string) ([]*NodeType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}
