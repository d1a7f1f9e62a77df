package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestMiddleware_LevelByStatus(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		logger := newLogger(&buf, "debug", false)
		h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/inventory", nil))

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %q", buf.String())
		}
		if line["level"] != tc.level {
			t.Errorf("status %d logged at %v, want %s", tc.status, line["level"], tc.level)
		}
		if line["path"] != "/inventory" || line["request_id"] == "" {
			t.Errorf("missing request fields: %v", line)
		}
		if int(line["status"].(float64)) != tc.status {
			t.Errorf("unexpected status field %v", line["status"])
		}
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", false)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	logger = newLogger(&buf, "bogus", false)
	logger.Debug().Msg("debug")
	logger.Info().Msg("info")
	if strings.Contains(buf.String(), "debug") || !strings.Contains(buf.String(), "info") {
		t.Errorf("bogus level should fall back to info, got %q", buf.String())
	}
}

func TestNewLogger_DevConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", true)
	logger.Info().Msg("ready")
	if !strings.Contains(buf.String(), "ready") || json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("expected console output, got %q", buf.String())
	}
}
