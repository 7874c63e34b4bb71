// Package metrics exposes Prometheus instrumentation for the generation
// pipeline. Every method is safe to call on a nil *Metrics, so components
// constructed without metrics need no guards.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibewall"

// Metrics holds the collectors and the private registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	AttemptsTotal     *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	PollsTotal        *prometheus.CounterVec
	LanesTotal        *prometheus.CounterVec
	JobDuration       *prometheus.HistogramVec
	TasksInFlight     prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec
}

// New builds a Metrics instance backed by its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "attempts_total",
				Help:      "Total number of generation submissions sent upstream",
			},
			[]string{"mode"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "failures_total",
				Help:      "Total number of classified upstream failures",
			},
			[]string{"mode", "kind"},
		),
		PollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "video",
				Name:      "polls_total",
				Help:      "Total number of video operation polls by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		LanesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "variations",
				Name:      "lanes_total",
				Help:      "Total number of settled variation lanes",
			},
			[]string{"outcome"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "job",
				Name:      "duration_seconds",
				Help:      "End-to-end duration of a generation job",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800},
			},
			[]string{"mode", "outcome"},
		),
		TasksInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "task",
				Name:      "in_flight",
				Help:      "Number of generation tasks currently executing",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAttempt counts one upstream submission.
func (m *Metrics) ObserveAttempt(mode generation.Mode) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(string(mode)).Inc()
}

// ObserveFailure counts one classified failure.
func (m *Metrics) ObserveFailure(mode generation.Mode, kind generation.Kind) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(string(mode), kind.String()).Inc()
}

// ObservePoll counts one poll on the named channel.
func (m *Metrics) ObservePoll(channel string, ok bool) {
	if m == nil {
		return
	}
	m.PollsTotal.WithLabelValues(channel, outcome(ok)).Inc()
}

// ObserveLane counts one settled variation lane.
func (m *Metrics) ObserveLane(ok bool) {
	if m == nil {
		return
	}
	m.LanesTotal.WithLabelValues(outcome(ok)).Inc()
}

// ObserveJob records how long a whole generation took.
func (m *Metrics) ObserveJob(mode generation.Mode, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(string(mode), outcome(ok)).Observe(elapsed.Seconds())
}

// TaskStarted and TaskFinished bracket one task execution.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.TasksInFlight.Inc()
}

func (m *Metrics) TaskFinished() {
	if m == nil {
		return
	}
	m.TasksInFlight.Dec()
}

// ObserveHTTP counts one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
