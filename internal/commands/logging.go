package commands

import (
	"strings"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// CommandLogger returns the logger for a command family such as "sync".
// Entries are named autotranslate.commands.<family> and tagged with the family.
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = "sync"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, strings.Join([]string{"autotranslate", "commands", family}, ".")),
		map[string]any{"layer": "commands", "command_family": family},
	)
}
