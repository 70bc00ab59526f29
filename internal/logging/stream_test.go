package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestStreamHandlerWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)

	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).With(slog.String(FieldProjectID, "prj-42"))

	logger.Info("test message", slog.String("extra", "value"))

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if events[0].ProjectID != "prj-42" {
		t.Errorf("expected project_id=prj-42, got %q", events[0].ProjectID)
	}
	if events[0].Message != "test message" {
		t.Errorf("expected message='test message', got %q", events[0].Message)
	}
	if events[0].Fields["extra"] != "value" {
		t.Errorf("expected extra field captured, got %v", events[0].Fields)
	}
}

func TestStreamHandlerNestedWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).
		With(slog.String(FieldComponent, "export-session")).
		With(slog.String(FieldProjectID, "prj-99")).
		With(slog.String(FieldOperation, "export"))

	logger.Info("export progress")

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	evt := events[0]
	if evt.ProjectID != "prj-99" {
		t.Errorf("expected project_id=prj-99, got %q", evt.ProjectID)
	}
	if evt.Component != "export-session" {
		t.Errorf("expected component='export-session', got %q", evt.Component)
	}
	if evt.Operation != "export" {
		t.Errorf("expected operation='export', got %q", evt.Operation)
	}
}

func TestStreamHandlerCallSiteOverridesWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).With(slog.String(FieldOperation, "original"))

	logger.Info("message", slog.String(FieldOperation, "overridden"))

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if events[0].Operation != "overridden" {
		t.Errorf("expected operation='overridden', got %q", events[0].Operation)
	}
}

func TestStreamHandlerNilHub(t *testing.T) {
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, nil)

	if handler != base {
		t.Errorf("expected base handler when hub is nil")
	}
}

func TestStreamHandlerEnabled(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := newStreamHandler(base, hub)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected INFO to be disabled when base level is WARN")
	}
	if !handler.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected WARN to be enabled when base level is WARN")
	}
}

func TestStreamHubFetchRespectsSince(t *testing.T) {
	hub := NewStreamHub(100)
	hub.Publish(LogEvent{Message: "first"})
	hub.Publish(LogEvent{Message: "second"})
	hub.Publish(LogEvent{Message: "third"})

	events, next, err := hub.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events after seq 1, got %d", len(events))
	}
	if events[0].Message != "second" || events[1].Message != "third" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if next != 3 {
		t.Fatalf("expected next sequence 3, got %d", next)
	}
}

func TestStreamHubBoundedBuffer(t *testing.T) {
	hub := NewStreamHub(3)
	for i := 0; i < 5; i++ {
		hub.Publish(LogEvent{Message: "event"})
	}

	events, _ := hub.Tail(10)
	if len(events) != 3 {
		t.Fatalf("expected buffer capped at 3, got %d", len(events))
	}
	if hub.FirstSequence() != 3 {
		t.Fatalf("expected first retained sequence 3, got %d", hub.FirstSequence())
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
