package autotranslate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	autotranslate "github.com/goliatone/go-cms-autotranslate"
	"github.com/goliatone/go-cms-autotranslate/internal/di"
	ditesting "github.com/goliatone/go-cms-autotranslate/internal/di/testing"
	"github.com/goliatone/go-cms-autotranslate/internal/synchronizer"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
)

type fixture struct {
	module     *autotranslate.Module
	translator *ditesting.RecordingTranslator
	reports    []*autotranslate.Report
}

func newModule(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{translator: &ditesting.RecordingTranslator{}}
	module, err := autotranslate.New(ditesting.Config(),
		di.WithTranslator(f.translator),
		di.WithNodeTypes(ditesting.PageType()),
		di.WithReportObserver(func(_ context.Context, report *synchronizer.Report) {
			f.reports = append(f.reports, report)
		}),
	)
	if err != nil {
		t.Fatalf("autotranslate.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	f.module = module
	return f
}

func (f *fixture) publish(t *testing.T, path string, props map[string]any) autotranslate.Node {
	t.Helper()
	ctx := context.Background()
	repo := f.module.Repository()
	node, err := repo.CreateNode(ctx, autotranslate.NodeInput{
		Workspace:  "user-admin",
		Locale:     "en_US",
		Path:       path,
		NodeType:   "page",
		Properties: props,
	})
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := repo.PublishNode(ctx, node); err != nil {
		t.Fatalf("publish %s: %v", path, err)
	}
	live, err := repo.GetByPath(ctx, "live", "en_US", path)
	if err != nil {
		t.Fatalf("live %s: %v", path, err)
	}
	return live
}

func (f *fixture) variant(t *testing.T, locale, path string) autotranslate.Node {
	t.Helper()
	node, err := f.module.Repository().GetByPath(context.Background(), "live", locale, path)
	if err != nil {
		t.Fatalf("variant %s [%s]: %v", path, locale, err)
	}
	return node
}

func TestModulePublishTranslatesSyncPresets(t *testing.T) {
	f := newModule(t)
	if !f.module.Enabled() {
		t.Fatal("expected module to be enabled by default")
	}
	f.publish(t, "/sites", map[string]any{"title": "Sites"})
	f.publish(t, "/sites/home", map[string]any{"title": "Home", "summary": "Hello"})

	de := f.variant(t, "de", "/sites/home")
	if got, _ := de.Property("summary"); got != "[de] Hello" {
		t.Fatalf("expected translated summary, got %v", got)
	}
	parent, err := de.Parent(context.Background())
	if err != nil || parent == nil || parent.Path() != "/sites" {
		t.Fatalf("expected de variant under /sites, got %v (%v)", parent, err)
	}
	if len(f.reports) != 2 {
		t.Fatalf("expected one report per canonical publish, got %d", len(f.reports))
	}
}

func TestModuleSyncNodeWithoutTranslationCopies(t *testing.T) {
	f := newModule(t)
	f.publish(t, "/sites", nil)
	home := f.publish(t, "/sites/home", map[string]any{"title": "Home"})

	ctx := context.Background()
	if err := home.SetProperty(ctx, "title", "Welcome"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	calls := len(f.translator.Calls())
	if err := f.module.SyncNode(ctx, home.Identifier(), "live", "en_US", false); err != nil {
		t.Fatalf("SyncNode: %v", err)
	}
	if got, _ := f.variant(t, "de", "/sites/home").Property("title"); got != "Welcome" {
		t.Fatalf("expected copied title, got %v", got)
	}
	if len(f.translator.Calls()) != calls {
		t.Fatalf("expected no translation requests, got %v", f.translator.Calls()[calls:])
	}
}

func TestModuleDispatchesSyncCommands(t *testing.T) {
	f := newModule(t)
	f.publish(t, "/sites", nil)
	home := f.publish(t, "/sites/home", map[string]any{"title": "Home"})

	unsubscribe := f.module.SubscribeCommands()
	t.Cleanup(unsubscribe)

	ctx := context.Background()
	if err := home.SetProperty(ctx, "title", "Start"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	err := dispatcher.Dispatch(ctx, autotranslate.SyncNodeCommand{
		NodeID:    home.Identifier(),
		Workspace: "live",
		Locale:    "en_US",
		Translate: true,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got, _ := f.variant(t, "de", "/sites/home").Property("title"); got != "[de] Start" {
		t.Fatalf("expected dispatched sync to translate, got %v", got)
	}
	last := f.reports[len(f.reports)-1]
	if last.Trigger != synchronizer.TriggerManual {
		t.Fatalf("expected manual trigger, got %s", last.Trigger)
	}
}

func TestModuleOnceStrategyTranslatesAdoptedVariant(t *testing.T) {
	f := newModule(t)
	f.publish(t, "/sites", nil)
	home := f.publish(t, "/sites/home", map[string]any{"title": "Home"})

	ctx := context.Background()
	frCtx, err := f.module.Repository().NewContext(ctx, interfaces.ContextOptions{
		Workspace:        "live",
		Dimensions:       map[string][]string{"language": {"fr", "en_US"}},
		TargetDimensions: map[string]string{"language": "fr"},
		Visibility:       interfaces.AllVisible(),
	})
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if _, err := frCtx.AdoptNode(ctx, home, false); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if got, _ := f.variant(t, "fr", "/sites/home").Property("title"); got != "[fr] Home" {
		t.Fatalf("expected translated fr title on adoption, got %v", got)
	}
	last := f.reports[len(f.reports)-1]
	if last.Trigger != synchronizer.TriggerAdopted || last.Outcomes()["fr"] != synchronizer.OutcomeReconciled {
		t.Fatalf("expected adopted fr reconcile, got %s %v", last.Trigger, last.Outcomes())
	}
}

// gatedTranslator parks requests containing hold until release is closed.
type gatedTranslator struct {
	*ditesting.RecordingTranslator
	hold    string
	once    sync.Once
	parked  chan struct{}
	release chan struct{}
}

func (g *gatedTranslator) Translate(ctx context.Context, texts map[string]string, target, source string) (map[string]string, error) {
	for _, text := range texts {
		if text == g.hold {
			g.once.Do(func() { close(g.parked) })
			<-g.release
			break
		}
	}
	return g.RecordingTranslator.Translate(ctx, texts, target, source)
}

func TestModuleIndependentPublishDuringPassIsSynchronized(t *testing.T) {
	gate := &gatedTranslator{
		RecordingTranslator: &ditesting.RecordingTranslator{},
		hold:                "Alpha",
		parked:              make(chan struct{}),
		release:             make(chan struct{}),
	}
	module, err := autotranslate.New(ditesting.Config(),
		di.WithTranslator(gate),
		di.WithNodeTypes(ditesting.PageType()),
	)
	if err != nil {
		t.Fatalf("autotranslate.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	f := &fixture{module: module, translator: gate.RecordingTranslator}
	f.publish(t, "/sites", nil)

	done := make(chan error, 1)
	go func() {
		ctx := context.Background()
		node, err := module.Repository().CreateNode(ctx, autotranslate.NodeInput{
			Workspace:  "user-admin",
			Locale:     "en_US",
			Path:       "/sites/a",
			NodeType:   "page",
			Properties: map[string]any{"summary": "Alpha"},
		})
		if err == nil {
			err = module.Repository().PublishNode(ctx, node)
		}
		done <- err
	}()

	select {
	case <-gate.parked:
	case <-time.After(5 * time.Second):
		close(gate.release)
		t.Fatal("pass for /sites/a never reached the translator")
	}
	if !module.Synchronizer().IsActive() {
		t.Fatal("expected the /sites/a pass to be in flight")
	}

	f.publish(t, "/sites/b", map[string]any{"summary": "Beta"})
	if got, _ := f.variant(t, "de", "/sites/b").Property("summary"); got != "[de] Beta" {
		t.Fatalf("expected independent publish to sync de, got %v", got)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("publish /sites/a: %v", err)
	}
	if got, _ := f.variant(t, "de", "/sites/a").Property("summary"); got != "[de] Alpha" {
		t.Fatalf("expected parked pass to finish, got %v", got)
	}
}
