// Package contentrepo is a workspace and dimension aware node repository that
// implements the collaborator contracts consumed by the synchronizer.
package contentrepo

import (
	"maps"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is the persisted state of one node variant in one workspace.
type Record struct {
	bun.BaseModel `bun:"table:autotranslate_nodes,alias:n"`

	ID            uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Identifier    uuid.UUID      `bun:"identifier,notnull,type:uuid" json:"identifier"`
	Workspace     string         `bun:"workspace,notnull" json:"workspace"`
	Locale        string         `bun:"locale,notnull" json:"locale"`
	Path          string         `bun:"path,notnull" json:"path"`
	NodeType      string         `bun:"node_type,notnull" json:"node_type"`
	Properties    map[string]any `bun:"properties,type:jsonb" json:"properties,omitempty"`
	Hidden        bool           `bun:"hidden,notnull,default:false" json:"hidden"`
	HiddenInIndex bool           `bun:"hidden_in_index,notnull,default:false" json:"hidden_in_index"`
	HiddenBefore  *time.Time     `bun:"hidden_before,nullzero" json:"hidden_before,omitempty"`
	HiddenAfter   *time.Time     `bun:"hidden_after,nullzero" json:"hidden_after,omitempty"`
	SortIndex     int            `bun:"sort_index,notnull,default:0" json:"sort_index"`
	Removed       bool           `bun:"removed,notnull,default:false" json:"removed"`
	Revision      int            `bun:"revision,notnull,default:0" json:"revision"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Properties = maps.Clone(r.Properties)
	if out.Properties == nil {
		out.Properties = map[string]any{}
	}
	if r.HiddenBefore != nil {
		t := *r.HiddenBefore
		out.HiddenBefore = &t
	}
	if r.HiddenAfter != nil {
		t := *r.HiddenAfter
		out.HiddenAfter = &t
	}
	return &out
}

func (r *Record) structure() interfaces.Structure {
	return interfaces.Structure{
		NodeType:      r.NodeType,
		Hidden:        r.Hidden,
		HiddenInIndex: r.HiddenInIndex,
		HiddenBefore:  r.HiddenBefore,
		HiddenAfter:   r.HiddenAfter,
		Index:         r.SortIndex,
	}
}

func (r *Record) applyStructure(s interfaces.Structure) {
	r.NodeType = s.NodeType
	r.Hidden = s.Hidden
	r.HiddenInIndex = s.HiddenInIndex
	r.HiddenBefore = copyTime(s.HiddenBefore)
	r.HiddenAfter = copyTime(s.HiddenAfter)
	r.SortIndex = s.Index
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// NormalizePath cleans p into an absolute node path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func parentPath(p string) string {
	if p == "/" {
		return ""
	}
	return path.Dir(p)
}

func isDescendantPath(candidate, ancestor string) bool {
	if ancestor == "/" {
		return candidate != "/"
	}
	return strings.HasPrefix(candidate, ancestor+"/")
}
