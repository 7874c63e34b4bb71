package orchestrator

import (
	"context"
	"time"

	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customises a runner or coordinator.
type Option func(*runtime)

type runtime struct {
	sleep   Sleeper
	now     func() time.Time
	metrics *metrics.Metrics
}

// WithSleeper replaces the wall-clock sleeper. Tests use it to record
// requested delays without waiting.
func WithSleeper(s Sleeper) Option {
	return func(r *runtime) {
		if s != nil {
			r.sleep = s
		}
	}
}

// WithClock replaces time.Now for stagger scheduling.
func WithClock(now func() time.Time) Option {
	return func(r *runtime) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *runtime) {
		r.metrics = m
	}
}

func newRuntime(opts []Option) runtime {
	r := runtime{sleep: sleepContext, now: time.Now}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
