package synccmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	nodeAdoptedMessageType   = "autotranslate.sync.node_adopted"
	nodePublishedMessageType = "autotranslate.sync.node_published"
	syncNodeMessageType      = "autotranslate.sync.sync_node"
)

// NodeAdoptedCommand reports that a variant of NodeID was materialised in
// TargetLocale from its SourceLocale variant.
type NodeAdoptedCommand struct {
	NodeID       uuid.UUID `json:"node_id"`
	Workspace    string    `json:"workspace"`
	SourceLocale string    `json:"source_locale"`
	TargetLocale string    `json:"target_locale"`
	Recursive    bool      `json:"recursive,omitempty"`
}

// Type implements command.Message.
func (NodeAdoptedCommand) Type() string { return nodeAdoptedMessageType }

// Validate ensures the message identifies the node and both locales.
func (m NodeAdoptedCommand) Validate() error {
	errs := nodeErrors(nodeAdoptedMessageType, m.NodeID, m.Workspace)
	if strings.TrimSpace(m.SourceLocale) == "" {
		errs["source_locale"] = validation.NewError(nodeAdoptedMessageType+".source_locale_required", "source_locale is required")
	}
	if strings.TrimSpace(m.TargetLocale) == "" {
		errs["target_locale"] = validation.NewError(nodeAdoptedMessageType+".target_locale_required", "target_locale is required")
	}
	if m.SourceLocale != "" && m.SourceLocale == m.TargetLocale {
		errs["target_locale"] = validation.NewError(nodeAdoptedMessageType+".target_locale_same", "target_locale must differ from source_locale")
	}
	return errs.Filter()
}

// NodePublishedCommand reports that the Locale variant of NodeID was published into Workspace.
type NodePublishedCommand struct {
	NodeID    uuid.UUID `json:"node_id"`
	Workspace string    `json:"workspace"`
	Locale    string    `json:"locale"`
}

// Type implements command.Message.
func (NodePublishedCommand) Type() string { return nodePublishedMessageType }

// Validate ensures the message identifies the published variant.
func (m NodePublishedCommand) Validate() error {
	errs := nodeErrors(nodePublishedMessageType, m.NodeID, m.Workspace)
	if strings.TrimSpace(m.Locale) == "" {
		errs["locale"] = validation.NewError(nodePublishedMessageType+".locale_required", "locale is required")
	}
	return errs.Filter()
}

// SyncNodeCommand requests a manual propagation of the Locale variant of NodeID
// to every sync preset in Workspace.
type SyncNodeCommand struct {
	NodeID    uuid.UUID `json:"node_id"`
	Workspace string    `json:"workspace"`
	Locale    string    `json:"locale"`
	Translate bool      `json:"translate"`
}

// Type implements command.Message.
func (SyncNodeCommand) Type() string { return syncNodeMessageType }

// Validate ensures the message identifies the source variant.
func (m SyncNodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NodeID, validation.By(requiredUUID(syncNodeMessageType))),
		validation.Field(&m.Workspace, validation.Required),
		validation.Field(&m.Locale, validation.Required),
	)
}

func nodeErrors(messageType string, id uuid.UUID, workspace string) validation.Errors {
	errs := validation.Errors{}
	if id == uuid.Nil {
		errs["node_id"] = validation.NewError(messageType+".node_id_required", "node_id is required")
	}
	if strings.TrimSpace(workspace) == "" {
		errs["workspace"] = validation.NewError(messageType+".workspace_required", "workspace is required")
	}
	return errs
}

func requiredUUID(messageType string) validation.RuleFunc {
	return func(value any) error {
		if id, _ := value.(uuid.UUID); id == uuid.Nil {
			return validation.NewError(messageType+".node_id_required", "node_id is required")
		}
		return nil
	}
}
