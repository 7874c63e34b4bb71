package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sniplyy/VibeWall/internal/api/shared"
	"github.com/Sniplyy/VibeWall/internal/platform/logger"
	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var gotTrace string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrace = shared.GetTraceID(r.Context())
		require.NotNil(t, logger.FromContext(r.Context()))
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	t.Run("generates trace ID", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Len(t, gotTrace, 32)
		assert.Equal(t, gotTrace, w.Header().Get(shared.TraceIDHeader))
		assert.Contains(t, buf.String(), gotTrace, "context logger carries the trace ID")
	})

	t.Run("reuses valid inbound trace ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(shared.TraceIDHeader, "client-trace-0001")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "client-trace-0001", gotTrace)
	})

	t.Run("replaces malformed inbound trace ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(shared.TraceIDHeader, "bad trace\nid")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "bad trace\nid", gotTrace)
		assert.Len(t, gotTrace, 32)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(m))
	r.Get("/v1/generations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/generations/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/generations/def", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/generations/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ok", "200")))
}
