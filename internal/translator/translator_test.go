package translator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestGatewaySkipsEmptyBatches(t *testing.T) {
	called := false
	g := NewGateway(Func(func(context.Context, map[string]string, string, string) (map[string]string, error) {
		called = true
		return nil, nil
	}))

	out, err := g.Translate(context.Background(), nil, "de", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("expected provider not to be called for empty batch")
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", out)
	}
}

func TestGatewayForwardsLanguages(t *testing.T) {
	var gotTarget, gotSource string
	g := NewGateway(Func(func(_ context.Context, texts map[string]string, target, source string) (map[string]string, error) {
		gotTarget, gotSource = target, source
		out := map[string]string{}
		for k, v := range texts {
			out[k] = "[" + target + "] " + v
		}
		return out, nil
	}))

	out, err := g.Translate(context.Background(), map[string]string{"title": "Hello"}, "de", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTarget != "de" || gotSource != "en" {
		t.Fatalf("expected de/en, got %s/%s", gotTarget, gotSource)
	}
	if !reflect.DeepEqual(out, map[string]string{"title": "[de] Hello"}) {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestGatewayRejectsKeyMismatch(t *testing.T) {
	g := NewGateway(Func(func(context.Context, map[string]string, string, string) (map[string]string, error) {
		return map[string]string{"other": "x"}, nil
	}))

	_, err := g.Translate(context.Background(), map[string]string{"title": "Hello"}, "de", "en")
	if !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
}

func TestGatewayWrapsProviderErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := NewGateway(Func(func(context.Context, map[string]string, string, string) (map[string]string, error) {
		return nil, boom
	}))

	_, err := g.Translate(context.Background(), map[string]string{"title": "Hello"}, "de", "en")
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error to be preserved, got %v", err)
	}
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) || typed.TextCode != TextCodeProviderFailed {
		t.Fatalf("expected text code %s, got %v", TextCodeProviderFailed, err)
	}
}

func TestNoopCopiesInput(t *testing.T) {
	in := map[string]string{"a": "1"}
	out, err := Noop{}.Translate(context.Background(), in, "de", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out["a"] = "2"
	if in["a"] != "1" {
		t.Fatal("expected Noop to return a copy")
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]string{"b": "", "a": "", "c": ""})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected key order %v", got)
	}
}
