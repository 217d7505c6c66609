package nodetypes

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PropertyTypeString is the only declared type eligible for translation.
const PropertyTypeString = "string"

// PropertyDeclaration describes a single property of a node type.
type PropertyDeclaration struct {
	Type                 string `yaml:"type" json:"type"`
	InlineEditable       bool   `yaml:"inlineEditable" json:"inlineEditable,omitempty"`
	AutomaticTranslation *bool  `yaml:"automaticTranslation" json:"automaticTranslation,omitempty"`
	// Deprecated: use AutomaticTranslation.
	TranslateOnAdoption *bool `yaml:"translateOnAdoption" json:"translateOnAdoption,omitempty"`
}

// TranslationOverride returns the first explicitly configured translation flag,
// checking AutomaticTranslation before the deprecated TranslateOnAdoption alias.
func (p PropertyDeclaration) TranslationOverride() (enabled bool, ok bool) {
	for _, flag := range []*bool{p.AutomaticTranslation, p.TranslateOnAdoption} {
		if flag != nil {
			return *flag, true
		}
	}
	return false, false
}

// IsString reports whether the declared type is exactly "string".
func (p PropertyDeclaration) IsString() bool {
	return p.Type == PropertyTypeString
}

// NodeType is the property schema shared by nodes of the same type.
type NodeType struct {
	bun.BaseModel `bun:"table:autotranslate_node_types,alias:nt" json:"-" yaml:"-"`

	ID                   uuid.UUID                      `bun:",pk,type:uuid" json:"id,omitempty" yaml:"-"`
	Name                 string                         `bun:"name,notnull,unique" json:"name" yaml:"name"`
	AutomaticTranslation *bool                          `bun:"automatic_translation" json:"automaticTranslation,omitempty" yaml:"automaticTranslation"`
	Properties           map[string]PropertyDeclaration `bun:"properties,type:jsonb,notnull" json:"properties" yaml:"properties"`
	CreatedAt            time.Time                      `bun:"created_at,nullzero,default:current_timestamp" json:"-" yaml:"-"`
	UpdatedAt            time.Time                      `bun:"updated_at,nullzero,default:current_timestamp" json:"-" yaml:"-"`
}

// Property returns the declaration of name, if declared.
func (t *NodeType) Property(name string) (PropertyDeclaration, bool) {
	if t == nil || t.Properties == nil {
		return PropertyDeclaration{}, false
	}
	decl, ok := t.Properties[name]
	return decl, ok
}

// AutomaticTranslationEnabled reports the type-level switch, enabled when unset.
func (t *NodeType) AutomaticTranslationEnabled() bool {
	if t == nil || t.AutomaticTranslation == nil {
		return true
	}
	return *t.AutomaticTranslation
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Bool returns a pointer to v, convenient for optional declaration flags.
func Bool(v bool) *bool {
	return &v
}
