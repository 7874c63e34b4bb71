package generation

import (
	"math"
	"math/rand/v2"
	"time"
)

// Image path backoff parameters.
const (
	DefaultRetryMinDelay     = 10 * time.Second
	DefaultRetryGrowthFactor = 1.5
	DefaultRetryMaxDelay     = 90 * time.Second
	DefaultRetryJitterMax    = 5 * time.Second
)

// Backoff computes exponential retry delays with additive jitter:
//
//	min(MinDelay * GrowthFactor^(attempt-1), MaxDelay) + U[0, JitterMax]
//
// The jitter is added after the cap, so the largest possible delay is
// MaxDelay + JitterMax.
type Backoff struct {
	MinDelay     time.Duration
	GrowthFactor float64
	MaxDelay     time.Duration
	JitterMax    time.Duration

	// jitter returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	jitter func() float64
}

// DefaultImageBackoff returns the schedule used between image attempts.
func DefaultImageBackoff() Backoff {
	return Backoff{
		MinDelay:     DefaultRetryMinDelay,
		GrowthFactor: DefaultRetryGrowthFactor,
		MaxDelay:     DefaultRetryMaxDelay,
		JitterMax:    DefaultRetryJitterMax,
	}
}

// WithJitterSource returns a copy that draws jitter fractions from fn.
// Tests pass a constant function to make delays deterministic.
func (b Backoff) WithJitterSource(fn func() float64) Backoff {
	b.jitter = fn
	return b
}

// NextDelay returns how long to wait after the given failed attempt.
// Attempts are 1-based; anything lower is treated as the first attempt.
func (b Backoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := float64(b.MinDelay) * math.Pow(b.GrowthFactor, float64(attempt-1))
	if math.IsNaN(base) || math.IsInf(base, 0) || base > float64(b.MaxDelay) {
		base = float64(b.MaxDelay)
	}
	if base < 0 {
		base = 0
	}

	var jitter float64
	if b.JitterMax > 0 {
		frac := b.jitterFraction()
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		jitter = frac * float64(b.JitterMax)
	}

	return time.Duration(base + jitter)
}

func (b Backoff) jitterFraction() float64 {
	if b.jitter != nil {
		return b.jitter()
	}
	return rand.Float64()
}
