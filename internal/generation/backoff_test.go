package generation_test

import (
	"testing"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestBackoff_NextDelay_NoJitter(t *testing.T) {
	t.Parallel()

	b := generation.DefaultImageBackoff().WithJitterSource(func() float64 { return 0 })

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Second},
		{1, 10 * time.Second},
		{2, 15 * time.Second},
		{3, 22500 * time.Millisecond},
		{4, 33750 * time.Millisecond},
		{5, 50625 * time.Millisecond},
		{6, 75937500 * time.Microsecond},
		{7, 90 * time.Second},
		{15, 90 * time.Second},
		{10000, 90 * time.Second},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, b.NextDelay(tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestBackoff_NextDelay_MaxJitter(t *testing.T) {
	t.Parallel()

	b := generation.DefaultImageBackoff().WithJitterSource(func() float64 { return 1 })

	assert.Equal(t, 15*time.Second, b.NextDelay(1))
	assert.Equal(t, 95*time.Second, b.NextDelay(12))
}

func TestBackoff_NextDelay_Bounds(t *testing.T) {
	t.Parallel()

	b := generation.DefaultImageBackoff()

	for attempt := 1; attempt <= 30; attempt++ {
		for i := 0; i < 50; i++ {
			d := b.NextDelay(attempt)
			assert.GreaterOrEqual(t, d, generation.DefaultRetryMinDelay)
			assert.LessOrEqual(t, d, generation.DefaultRetryMaxDelay+generation.DefaultRetryJitterMax)
		}
	}
}

func TestBackoff_NextDelay_ClampsJitterSource(t *testing.T) {
	t.Parallel()

	b := generation.Backoff{
		MinDelay:     time.Second,
		GrowthFactor: 2,
		MaxDelay:     4 * time.Second,
		JitterMax:    time.Second,
	}

	assert.Equal(t, time.Second, b.WithJitterSource(func() float64 { return -3 }).NextDelay(1))
	assert.Equal(t, 5*time.Second, b.WithJitterSource(func() float64 { return 7 }).NextDelay(9))
}
