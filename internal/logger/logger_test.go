package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("Failed to decode log line %q: %v", line, err)
		}
		records = append(records, record)
	}
	return records
}

func TestWithContextAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithOperation(ctx, "generate")
	ctx = WithStrategy(ctx, "proxy")

	log.WithContext(ctx).WithComponent("generation").Info("hello")

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	want := map[string]string{
		"request_id": "req-1",
		"operation":  "generate",
		"strategy":   "proxy",
		"component":  "generation",
		"msg":        "hello",
	}
	for key, value := range want {
		if records[0][key] != value {
			t.Errorf("Expected %s=%q, got %v", key, value, records[0][key])
		}
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelError, Format: "json", Output: &buf})

	log.LogError(WithRequestID(context.Background(), "req-2"), errors.New("boom"), "failed", "attempt", 2)

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0]["error"] != "boom" || records[0]["request_id"] != "req-2" || records[0]["attempt"] != float64(2) {
		t.Errorf("Unexpected record %v", records[0])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelDebug,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if cfg := FromConfig("info", ""); cfg.Format != "text" || cfg.Level != slog.LevelInfo {
		t.Errorf("Unexpected config %+v", cfg)
	}

	t.Setenv("APP_ENV", "production")
	if cfg := FromConfig("info", "text"); cfg.Format != "json" {
		t.Errorf("Expected json format in production, got %q", cfg.Format)
	}
}

func TestRequestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	var seen string
	router := gin.New()
	router.Use(RequestLoggingMiddleware(log))
	router.GET("/ping", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(ContextKeyRequestID).(string)
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	if id == "" || id != seen {
		t.Errorf("Expected generated request ID in header and context, got %q and %q", id, seen)
	}

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("Expected 1 info record, got %d", len(records))
	}
	if records[0]["status"] != float64(http.StatusTeapot) || records[0]["request_id"] != id {
		t.Errorf("Unexpected record %v", records[0])
	}
}
