package guard

import (
	"context"
	"testing"
)

func TestEnterMarksActiveUntilRelease(t *testing.T) {
	g := New()
	if g.IsActive() {
		t.Fatal("expected new guard to be inactive")
	}

	ctx, release := g.Enter(context.Background())
	if !g.IsActive() {
		t.Fatal("expected guard to be active after Enter")
	}
	if !Active(ctx) || !g.Owns(ctx) {
		t.Fatal("expected context to carry the guard token")
	}

	release()
	release()
	if g.IsActive() {
		t.Fatal("expected guard to be inactive after release")
	}
}

func TestNestedEntries(t *testing.T) {
	g := New()
	ctx, outer := g.Enter(context.Background())
	_, inner := g.Enter(ctx)
	inner()
	if !g.IsActive() {
		t.Fatal("expected outer entry to keep the guard active")
	}
	outer()
	if g.IsActive() {
		t.Fatal("expected guard to be inactive once every entry released")
	}
}

func TestGuardsAreIndependent(t *testing.T) {
	a, b := New(), New()
	ctx, release := a.Enter(context.Background())
	defer release()

	if b.IsActive() {
		t.Fatal("expected unrelated guard to stay inactive")
	}
	if b.Owns(ctx) {
		t.Fatal("expected token to belong to the entering guard only")
	}
	if Active(context.Background()) {
		t.Fatal("expected plain context to carry no token")
	}
}
