package commands

import (
	"context"
	"testing"
	"time"
)

func TestExecutionContextWithoutTimeoutIsCancelable(t *testing.T) {
	var parent context.Context
	ctx, cancel := executionContext(parent, 0)
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline when timeout is disabled")
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatal("expected cancel to end the context")
	}
}

func TestDeadlineFieldsAddsBudget(t *testing.T) {
	fields := map[string]any{"command": "autotranslate.sync.node"}
	if got := deadlineFields(context.Background(), fields); len(got) != 1 {
		t.Fatalf("expected fields untouched without deadline, got %v", got)
	}

	ctx, cancel := executionContext(context.Background(), time.Minute)
	defer cancel()
	got := deadlineFields(ctx, fields)
	if _, ok := got["command_budget"]; !ok {
		t.Fatalf("expected command_budget field, got %v", got)
	}
	if _, ok := fields["command_budget"]; ok {
		t.Fatal("expected input fields to stay untouched")
	}
}
