package locales

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy governs whether and when a preset variant tracks its canonical source.
type Strategy string

const (
	// StrategyNone never synchronizes the preset.
	StrategyNone Strategy = "none"
	// StrategyOnce synchronizes the preset when its variant is first adopted.
	StrategyOnce Strategy = "once"
	// StrategySync synchronizes the preset on every canonical publish.
	StrategySync Strategy = "sync"
)

// ErrStrategyInvalid is returned when a preset declares an unsupported strategy.
var ErrStrategyInvalid = errors.New("locales: translation strategy is invalid")

// ParseStrategy normalises a configured strategy. Empty values resolve to StrategyNone.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StrategyNone:
		return StrategyNone, nil
	case StrategyOnce:
		return StrategyOnce, nil
	case StrategySync:
		return StrategySync, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrStrategyInvalid, raw)
	}
}

func (s Strategy) String() string { return string(s) }
