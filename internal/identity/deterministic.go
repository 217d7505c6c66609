package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "autotranslate"

// UUID hashes key into a stable UUID. Keys from different entity kinds must
// not overlap; the helpers below prefix each kind.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}

func scoped(kind string, parts ...string) uuid.UUID {
	return UUID(namespace + ":" + kind + ":" + strings.Join(parts, ":"))
}

// NodeUUID returns the aggregate identifier shared by every variant of a node.
func NodeUUID(key string) uuid.UUID {
	return scoped("node", strings.TrimSpace(key))
}

// VariantUUID identifies one locale variant of node within workspace.
// Workspace names compare case-insensitively.
func VariantUUID(workspace string, node uuid.UUID, locale string) uuid.UUID {
	return scoped("variant",
		strings.ToLower(strings.TrimSpace(workspace)),
		node.String(),
		strings.TrimSpace(locale),
	)
}

// NodeTypeUUID identifies a persisted node type definition.
func NodeTypeUUID(name string) uuid.UUID {
	return scoped("node_type", strings.TrimSpace(name))
}
