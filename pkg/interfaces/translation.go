package interfaces

import "context"

// Translator batch translates property texts between provider language codes.
// Implementations must return a map with exactly the keys of texts.
type Translator interface {
	Translate(ctx context.Context, texts map[string]string, targetLanguage, sourceLanguage string) (map[string]string, error)
}
