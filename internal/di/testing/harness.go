package ditesting

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-cms-autotranslate/internal/di"
	"github.com/goliatone/go-cms-autotranslate/internal/locales"
	"github.com/goliatone/go-cms-autotranslate/internal/nodetypes"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// TranslateCall captures a single provider request.
type TranslateCall struct {
	Target string
	Source string
	Keys   []string
}

// RecordingTranslator prefixes every text with "[target] " and records the requests.
type RecordingTranslator struct {
	mu    sync.Mutex
	calls []TranslateCall
	err   error
}

var _ interfaces.Translator = (*RecordingTranslator)(nil)

// Translate implements interfaces.Translator.
func (r *RecordingTranslator) Translate(_ context.Context, texts map[string]string, target, source string) (map[string]string, error) {
	keys := make([]string, 0, len(texts))
	for key := range texts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, TranslateCall{Target: target, Source: source, Keys: keys})
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]string, len(texts))
	for key, value := range texts {
		out[key] = "[" + target + "] " + value
	}
	return out, nil
}

// FailWith makes later requests return err. A nil err restores success.
func (r *RecordingTranslator) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Calls returns a copy of the recorded requests.
func (r *RecordingTranslator) Calls() []TranslateCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TranslateCall(nil), r.calls...)
}

// PageType declares an inline title, a translated summary and an untranslated reference.
func PageType() *nodetypes.NodeType {
	return &nodetypes.NodeType{
		Name: "page",
		Properties: map[string]nodetypes.PropertyDeclaration{
			"title":   {Type: "string", InlineEditable: true},
			"summary": {Type: "string", AutomaticTranslation: nodetypes.Bool(true)},
			"related": {Type: "reference"},
		},
	}
}

// Config returns a four preset dimension: en_US (default), de (sync), fr (once), it (none).
func Config() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.TranslateInlineEditables = true
	cfg.Dimension = locales.Dimension{
		Name:          "language",
		DefaultPreset: "en_US",
		Presets: map[string]locales.Preset{
			"en_US": {Label: "English (US)"},
			"de":    {Label: "German", TranslationStrategy: string(locales.StrategySync)},
			"fr":    {Label: "French", TranslationStrategy: string(locales.StrategyOnce)},
			"it":    {Label: "Italian", TranslationStrategy: string(locales.StrategyNone)},
		},
	}
	return cfg
}

// NewContainer wires cfg with a RecordingTranslator and PageType registered.
func NewContainer(cfg runtimeconfig.Config, opts ...di.Option) (*di.Container, *RecordingTranslator, error) {
	recorder := &RecordingTranslator{}
	all := append([]di.Option{
		di.WithTranslator(recorder),
		di.WithNodeTypes(PageType()),
	}, opts...)
	container, err := di.NewContainer(cfg, all...)
	if err != nil {
		return nil, nil, err
	}
	return container, recorder, nil
}
