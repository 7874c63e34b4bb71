package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()

	m.ObserveAttempt(generation.ModeImage)
	m.ObserveAttempt(generation.ModeImage)
	m.ObserveFailure(generation.ModeImage, generation.KindRetryable)
	m.ObservePoll("sdk", false)
	m.ObservePoll("rest", true)
	m.ObserveLane(true)
	m.ObserveJob(generation.ModeVideo, true, 42*time.Second)
	m.TaskStarted()
	m.TaskStarted()
	m.TaskFinished()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttemptsTotal.WithLabelValues("image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("image", "retryable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("sdk", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("rest", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LanesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksInFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(m.JobDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt(generation.ModeImage)
		m.ObserveFailure(generation.ModeVideo, generation.KindFatal)
		m.ObservePoll("sdk", true)
		m.ObserveLane(false)
		m.ObserveJob(generation.ModeImage, false, time.Second)
		m.TaskStarted()
		m.TaskFinished()
		m.ObserveHTTP(http.MethodGet, "/healthz", http.StatusOK)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAttempt(generation.ModeVideo)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vibewall_upstream_attempts_total{mode="video"} 1`)
}
