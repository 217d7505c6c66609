package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is one schema violation, located by JSON pointer.
type Issue struct {
	Pointer string
	Message string
}

func (i Issue) String() string {
	pointer := "#" + strings.TrimPrefix(strings.TrimSpace(i.Pointer), "#")
	if i.Message == "" {
		return pointer
	}
	return pointer + ": " + i.Message
}

// IssuesError reports every violation found in a document.
type IssuesError struct {
	Document string
	Issues   []Issue
}

func (e *IssuesError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", e.Document, strings.Join(parts, "; "))
}

func (e *IssuesError) Unwrap() error { return ErrSchemaValidation }

// Issues returns the violations carried by err, or a single issue holding
// err's message when err is not a schema failure.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var issuesErr *IssuesError
	if errors.As(err, &issuesErr) {
		return issuesErr.Issues
	}
	return []Issue{{Message: err.Error()}}
}

// Schema is a compiled Draft 2020-12 schema for one document kind.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles raw under name.
func CompileSchema(name string, raw []byte) (*Schema, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for embedded schemas.
func MustCompileSchema(name string, raw []byte) *Schema {
	schema, err := CompileSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return schema
}

// Validate checks a decoded YAML or JSON document. A nil schema accepts anything.
func (s *Schema) Validate(document any) error {
	_, err := s.normalizeAndValidate(document)
	return err
}

// Decode validates document and then decodes it into out through its JSON form,
// so YAML documents honour json struct tags.
func (s *Schema) Decode(document, out any) error {
	normalized, err := s.normalizeAndValidate(document)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

func (s *Schema) normalizeAndValidate(document any) (any, error) {
	normalized, err := Normalize(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if s == nil || s.compiled == nil {
		return normalized, nil
	}
	if err := s.compiled.Validate(normalized); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
		}
		return nil, &IssuesError{Document: s.name, Issues: leafIssues(verr)}
	}
	return normalized, nil
}

// Normalize round-trips document through encoding/json so the validator only
// sees JSON types. Numbers decode as json.Number.
func Normalize(document any) (any, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// leafIssues flattens the cause tree, ordered by pointer.
func leafIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	pending := []*jsonschema.ValidationError{root}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if len(node.Causes) > 0 {
			pending = append(pending, node.Causes...)
			continue
		}
		issues = append(issues, Issue{
			Pointer: strings.TrimSpace(node.InstanceLocation),
			Message: strings.TrimSpace(node.Message),
		})
	}
	slices.SortStableFunc(issues, func(a, b Issue) int { return strings.Compare(a.Pointer, b.Pointer) })
	return issues
}
