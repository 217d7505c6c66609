package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

type nodeMessage struct {
	Workspace string
}

func (nodeMessage) Type() string { return "autotranslate.test.node" }

func (m nodeMessage) Validate() error {
	if m.Workspace == "" {
		return errors.New("workspace required")
	}
	return nil
}

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]entry{}}
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	fields := map[string]any{}
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	l.mu.Lock()
	*l.entries = append(*l.entries, entry{level: level, msg: msg, fields: fields})
	l.mu.Unlock()
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *recordingLogger) find(msg string) (entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range *l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return entry{}, false
}

func TestHandlerExecuteSuccessLogsOutcome(t *testing.T) {
	logger := newRecordingLogger()
	var got nodeMessage
	h := NewHandler(func(_ context.Context, msg nodeMessage) error {
		got = msg
		return nil
	}, WithLogger[nodeMessage](logger), WithOperation[nodeMessage]("sync.node"))

	if err := h.Execute(context.Background(), nodeMessage{Workspace: "live"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Workspace != "live" {
		t.Fatalf("expected message to reach the handler, got %+v", got)
	}
	completed, ok := logger.find("command.completed")
	if !ok {
		t.Fatal("expected command.completed entry")
	}
	if completed.fields["status"] != "success" || completed.fields["operation"] != "sync.node" {
		t.Fatalf("unexpected completion fields %v", completed.fields)
	}
	if _, ok := completed.fields["command_budget"]; !ok {
		t.Fatalf("expected default timeout budget in fields, got %v", completed.fields)
	}
}

func TestHandlerClassifiesFailures(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name     string
		ctx      context.Context
		msg      nodeMessage
		exec     func(context.Context, nodeMessage) error
		timeout  time.Duration
		category goerrors.Category
		code     string
		runs     int
	}{
		{
			name:     "invalid message",
			ctx:      context.Background(),
			msg:      nodeMessage{},
			category: goerrors.CategoryValidation,
			runs:     0,
		},
		{
			name:     "canceled before start",
			ctx:      canceled,
			msg:      nodeMessage{Workspace: "live"},
			category: goerrors.CategoryCommand,
			code:     TextCodeCanceled,
			runs:     0,
		},
		{
			name: "execution error",
			ctx:  context.Background(),
			msg:  nodeMessage{Workspace: "live"},
			exec: func(context.Context, nodeMessage) error {
				return errors.New("provider down")
			},
			category: goerrors.CategoryCommand,
			code:     TextCodeExecutionFailed,
			runs:     1,
		},
		{
			name: "timeout honoured by execution",
			ctx:  context.Background(),
			msg:  nodeMessage{Workspace: "live"},
			exec: func(ctx context.Context, _ nodeMessage) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(200 * time.Millisecond):
					return nil
				}
			},
			timeout:  10 * time.Millisecond,
			category: goerrors.CategoryCommand,
			code:     TextCodeExecutionFailed,
			runs:     1,
		},
		{
			name: "timeout ignored by execution",
			ctx:  context.Background(),
			msg:  nodeMessage{Workspace: "live"},
			exec: func(ctx context.Context, _ nodeMessage) error {
				<-ctx.Done()
				return nil
			},
			timeout:  5 * time.Millisecond,
			category: goerrors.CategoryCommand,
			code:     TextCodeTimeout,
			runs:     1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runs := 0
			h := NewHandler(func(ctx context.Context, msg nodeMessage) error {
				runs++
				if tc.exec != nil {
					return tc.exec(ctx, msg)
				}
				return nil
			}, WithTimeout[nodeMessage](tc.timeout))

			err := h.Execute(tc.ctx, tc.msg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %s, got %v", tc.category, err)
			}
			if tc.code != "" {
				var typed *goerrors.Error
				if !goerrors.As(err, &typed) || typed.TextCode != tc.code {
					t.Fatalf("expected text code %s, got %v", tc.code, err)
				}
			}
			if runs != tc.runs {
				t.Fatalf("expected %d executions, got %d", tc.runs, runs)
			}
		})
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var infos []TelemetryInfo
	execErr := errors.New("provider down")
	h := NewHandler(func(_ context.Context, msg nodeMessage) error {
		if msg.Workspace == "broken" {
			return execErr
		}
		return nil
	},
		WithOperation[nodeMessage]("sync.test"),
		WithMessageFields(func(msg nodeMessage) map[string]any {
			return map[string]any{"workspace": msg.Workspace}
		}),
		WithTelemetry(func(_ context.Context, _ nodeMessage, info TelemetryInfo) {
			infos = append(infos, info)
		}),
	)

	if err := h.Execute(context.Background(), nodeMessage{Workspace: "live"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := h.Execute(context.Background(), nodeMessage{Workspace: "broken"}); !errors.Is(err, execErr) {
		t.Fatalf("expected wrapped execution error, got %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("expected two telemetry callbacks, got %d", len(infos))
	}
	first := infos[0]
	if first.Status != TelemetryStatusSuccess || first.Command != "autotranslate.test.node" || first.Operation != "sync.test" {
		t.Fatalf("unexpected success telemetry %+v", first)
	}
	if first.Fields["workspace"] != "live" {
		t.Fatalf("expected message fields in telemetry, got %v", first.Fields)
	}
	if !infos[1].Status.Failed() || infos[1].Error == nil {
		t.Fatalf("unexpected failure telemetry %+v", infos[1])
	}
}

func TestDefaultTelemetryLogsFailureWithError(t *testing.T) {
	logger := newRecordingLogger()
	h := NewHandler(func(context.Context, nodeMessage) error {
		return errors.New("quota exceeded")
	}, WithTelemetry(DefaultTelemetry[nodeMessage](logger)))

	if err := h.Execute(context.Background(), nodeMessage{Workspace: "live"}); err == nil {
		t.Fatal("expected failure")
	}
	failed, ok := logger.find("command.failed")
	if !ok {
		t.Fatal("expected command.failed entry")
	}
	if failed.level != "error" || failed.fields["status"] != "failed" || failed.fields["error"] == nil {
		t.Fatalf("unexpected failure entry %+v", failed)
	}
	if failed.fields["command"] != "autotranslate.test.node" {
		t.Fatalf("expected command type field, got %v", failed.fields)
	}
}
