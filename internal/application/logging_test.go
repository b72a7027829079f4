package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/example/staff-roster/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}
	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersRequestLogger(t *testing.T) {
	t.Parallel()

	var base, request bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	requestLogger := slog.New(slog.NewJSONHandler(&request, nil)).With("request_id", "req-9")
	ctx := logging.ContextWithLogger(context.Background(), requestLogger)

	serviceLogger(ctx, baseLogger, "ShiftCatalog", "EnsureSlots", "range", "01/09/24..06/09/24").Info("slots ensured")

	if base.Len() != 0 {
		t.Fatalf("expected the base logger to stay silent, got %s", base.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(request.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", request.String(), err)
	}
	for key, want := range map[string]string{
		"request_id": "req-9",
		"service":    "ShiftCatalog",
		"operation":  "EnsureSlots",
		"range":      "01/09/24..06/09/24",
	} {
		if entry[key] != want {
			t.Fatalf("expected %s=%q, got %v", key, want, entry[key])
		}
	}
}

func TestServiceLoggerFallsBackToBase(t *testing.T) {
	t.Parallel()

	var base bytes.Buffer
	serviceLogger(context.Background(), slog.New(slog.NewJSONHandler(&base, nil)), "RangeService", "").Info("cleared")

	if !bytes.Contains(base.Bytes(), []byte(`"service":"RangeService"`)) {
		t.Fatalf("expected service attribute in %s", base.String())
	}
	if bytes.Contains(base.Bytes(), []byte(`"operation"`)) {
		t.Fatalf("expected no operation attribute for an empty name, got %s", base.String())
	}
}
