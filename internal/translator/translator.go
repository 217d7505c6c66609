// Package translator adapts translation providers to the batch contract
// consumed by the reconciler.
package translator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

// TextCodeProviderFailed tags translation provider failures.
const TextCodeProviderFailed = "TRANSLATION_PROVIDER_FAILED"

// ErrKeyMismatch is returned when a provider result does not carry the requested keys.
var ErrKeyMismatch = errors.New("translator: result keys do not match request")

// Func adapts a plain function to interfaces.Translator.
type Func func(ctx context.Context, texts map[string]string, targetLanguage, sourceLanguage string) (map[string]string, error)

// Translate implements interfaces.Translator.
func (f Func) Translate(ctx context.Context, texts map[string]string, targetLanguage, sourceLanguage string) (map[string]string, error) {
	return f(ctx, texts, targetLanguage, sourceLanguage)
}

// Noop returns the input texts unchanged.
type Noop struct{}

// Translate implements interfaces.Translator.
func (Noop) Translate(_ context.Context, texts map[string]string, _, _ string) (map[string]string, error) {
	out := make(map[string]string, len(texts))
	for key, value := range texts {
		out[key] = value
	}
	return out, nil
}

// EnsureKeys verifies that result carries exactly the keys of request.
func EnsureKeys(request, result map[string]string) error {
	if len(request) != len(result) {
		return fmt.Errorf("%w: requested %d, received %d", ErrKeyMismatch, len(request), len(result))
	}
	for key := range request {
		if _, ok := result[key]; !ok {
			return fmt.Errorf("%w: missing %q", ErrKeyMismatch, key)
		}
	}
	return nil
}

// SortedKeys returns the keys of texts in lexical order so providers can send stable batches.
func SortedKeys(texts map[string]string) []string {
	keys := make([]string, 0, len(texts))
	for key := range texts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Gateway decorates a provider with key checks, logging and error categorisation.
type Gateway struct {
	provider interfaces.Translator
	logger   interfaces.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger interfaces.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway wraps provider. A nil provider behaves like Noop.
func NewGateway(provider interfaces.Translator, opts ...GatewayOption) *Gateway {
	if provider == nil {
		provider = Noop{}
	}
	g := &Gateway{
		provider: provider,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ interfaces.Translator = (*Gateway)(nil)

// Translate forwards a non-empty batch to the provider. The call is atomic:
// either every key is translated or an error is returned.
func (g *Gateway) Translate(ctx context.Context, texts map[string]string, targetLanguage, sourceLanguage string) (map[string]string, error) {
	if len(texts) == 0 {
		return map[string]string{}, nil
	}
	logger := logging.WithFields(g.logger.WithContext(ctx), map[string]any{
		"target_language": targetLanguage,
		"source_language": sourceLanguage,
		"properties":      len(texts),
	})
	logger.Debug("translator.request.start")

	result, err := g.provider.Translate(ctx, texts, targetLanguage, sourceLanguage)
	if err == nil {
		err = EnsureKeys(texts, result)
	}
	if err != nil {
		logger.Error("translator.request.failed", "error", err)
		return nil, wrapProviderError(err)
	}

	logger.Debug("translator.request.completed")
	return result, nil
}

func wrapProviderError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "translation provider failed").
		WithTextCode(TextCodeProviderFailed)
}
