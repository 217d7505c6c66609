// Package selector partitions node properties into values copied verbatim and
// values sent to the translation provider.
package selector

import (
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/microcosm-cc/bluemonday"
)

var markupPolicy = bluemonday.StrictPolicy()

// Options carry the configuration consulted while selecting properties.
type Options struct {
	// TranslateInlineEditables routes inline-editable string properties to
	// translation when they declare no explicit override.
	TranslateInlineEditables bool
}

// Result holds the disjoint copy and translate partitions.
type Result struct {
	Copy      map[string]any
	Translate map[string]string
}

// Partition splits properties using the node type schema. Every property lands
// in exactly one partition; empty and falsy values are copied so cleared source
// fields reach the variant.
func Partition(nodeType *nodetypes.NodeType, properties map[string]any, opts Options) Result {
	result := Result{
		Copy:      map[string]any{},
		Translate: map[string]string{},
	}
	for name, value := range properties {
		decl, declared := nodeType.Property(name)
		if !declared {
			result.Copy[name] = value
			continue
		}
		text, ok := value.(string)
		if !ok || !decl.IsString() || IsBlankMarkup(text) {
			result.Copy[name] = value
			continue
		}
		if wantsTranslation(decl, opts) {
			result.Translate[name] = text
			continue
		}
		result.Copy[name] = value
	}
	return result
}

func wantsTranslation(decl nodetypes.PropertyDeclaration, opts Options) bool {
	if enabled, ok := decl.TranslationOverride(); ok {
		return enabled
	}
	return decl.InlineEditable && opts.TranslateInlineEditables
}

// IsBlankMarkup reports whether text is empty once markup is stripped and whitespace trimmed.
func IsBlankMarkup(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	stripped := markupPolicy.Sanitize(text)
	stripped = strings.ReplaceAll(stripped, "&nbsp;", " ")
	stripped = strings.ReplaceAll(stripped, "&#160;", " ")
	return strings.TrimSpace(stripped) == ""
}
