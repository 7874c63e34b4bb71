package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"golang.org/x/sync/errgroup"
)

// Coordinator defaults.
const (
	DefaultVariationCount   = 4
	DefaultVariationStagger = 8 * time.Second
)

// Runner produces one piece of media for a request. ImageRunner and
// VideoRunner both satisfy it.
type Runner interface {
	Run(ctx context.Context, req generation.Request) (*generation.Media, error)
}

// CoordinatorConfig tunes the variation fan-out.
type CoordinatorConfig struct {
	// Count is the number of image variations per request.
	Count int
	// Stagger schedules lane i to start i*Stagger after the batch starts.
	// Time a lane spends waiting for a concurrency slot counts toward it.
	Stagger time.Duration
	// MaxConcurrent caps how many lanes run at once. Zero means all.
	MaxConcurrent int
}

// VariationOutcome is the settled result of one lane.
type VariationOutcome struct {
	Index int
	Media *generation.Media
	Err   *generation.ClassifiedError
}

// Coordinator turns one request into the set of media shown to the user.
type Coordinator struct {
	images Runner
	videos Runner
	cfg    CoordinatorConfig
	logger *slog.Logger
	rt     runtime
}

// NewCoordinator creates a Coordinator. A non-positive Count falls back to
// DefaultVariationCount.
func NewCoordinator(images, videos Runner, cfg CoordinatorConfig, logger *slog.Logger, opts ...Option) *Coordinator {
	if cfg.Count < 1 {
		cfg.Count = DefaultVariationCount
	}
	if cfg.Stagger < 0 {
		cfg.Stagger = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		images: images,
		videos: videos,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "coordinator")),
		rt:     newRuntime(opts),
	}
}

// Generate runs req with the configured variation count.
func (c *Coordinator) Generate(ctx context.Context, req generation.Request) ([]generation.Media, error) {
	return c.GenerateN(ctx, req, c.cfg.Count)
}

// GenerateN validates req and runs it. Video requests produce a single
// media item. Image requests fan out into count variations (the configured
// count when count < 1) and return every lane that succeeded, ordered by
// lane index.
func (c *Coordinator) GenerateN(ctx context.Context, req generation.Request, count int) ([]generation.Media, error) {
	if err := req.Validate(); err != nil {
		return nil, generation.Classify(err).AsFatal()
	}
	req = req.WithDefaults()
	if count < 1 {
		count = c.cfg.Count
	}

	start := time.Now()
	media, err := c.dispatch(ctx, req, count)
	c.rt.metrics.ObserveJob(req.Mode, err == nil, time.Since(start))
	return media, err
}

func (c *Coordinator) dispatch(ctx context.Context, req generation.Request, count int) ([]generation.Media, error) {
	if req.Mode == generation.ModeVideo {
		media, err := c.videos.Run(ctx, req)
		if err != nil {
			return nil, generation.Classify(err)
		}
		if media == nil {
			return nil, generation.Classify(fmt.Errorf("%w: video run produced no media", generation.ErrNoMedia)).AsFatal()
		}
		return []generation.Media{*media}, nil
	}
	return Aggregate(c.Settle(ctx, req, count))
}

// Settle runs count image lanes to completion and returns their outcomes
// in lane order. It never fails fast.
func (c *Coordinator) Settle(ctx context.Context, req generation.Request, count int) []VariationOutcome {
	if count < 1 {
		count = c.cfg.Count
	}
	outcomes := make([]VariationOutcome, count)
	start := c.rt.now()

	var g errgroup.Group
	if c.cfg.MaxConcurrent > 0 {
		g.SetLimit(c.cfg.MaxConcurrent)
	}
	for i := range outcomes {
		g.Go(func() error {
			outcomes[i] = c.runLane(ctx, i, start, req)
			c.rt.metrics.ObserveLane(outcomes[i].Err == nil)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (c *Coordinator) runLane(ctx context.Context, index int, start time.Time, req generation.Request) VariationOutcome {
	outcome := VariationOutcome{Index: index}
	logger := c.logger.With("lane", index)

	due := start.Add(time.Duration(index) * c.cfg.Stagger)
	if delay := due.Sub(c.rt.now()); delay > 0 {
		if err := c.rt.sleep(ctx, delay); err != nil {
			outcome.Err = generation.Classify(fmt.Errorf("variation cancelled before start: %w", err)).AsFatal()
			return outcome
		}
	}

	media, err := c.images.Run(ctx, req)
	if err != nil {
		outcome.Err = generation.Classify(err)
		logger.WarnContext(ctx, "Variation failed",
			"kind", outcome.Err.Kind.String(),
			"error", outcome.Err.Message)
		return outcome
	}
	if media == nil {
		outcome.Err = generation.Classify(fmt.Errorf("%w: variation produced no media", generation.ErrNoMedia)).AsFatal()
		return outcome
	}

	m := *media
	m.Index = index
	outcome.Media = &m
	logger.InfoContext(ctx, "Variation ready")
	return outcome
}

// Aggregate folds settled lanes into the batch result:
//
//   - any credential failure is reported, even alongside successes
//   - a batch where every lane hit quota reports the first quota failure
//   - otherwise the successes are returned in lane order
//   - with no successes the first failure is reported
func Aggregate(outcomes []VariationOutcome) ([]generation.Media, error) {
	if len(outcomes) == 0 {
		return nil, generation.Classify(errors.New("no variations were run")).AsFatal()
	}

	for _, o := range outcomes {
		if o.Err != nil && o.Err.Kind == generation.KindAuthInvalid {
			return nil, o.Err
		}
	}

	var (
		media      []generation.Media
		firstErr   *generation.ClassifiedError
		allQuota   = true
		firstQuota *generation.ClassifiedError
	)
	for _, o := range outcomes {
		if o.Err == nil && o.Media != nil {
			media = append(media, *o.Media)
			allQuota = false
			continue
		}

		err := o.Err
		if err == nil {
			err = generation.Classify(fmt.Errorf("%w: variation produced no media", generation.ErrNoMedia)).AsFatal()
		}
		if firstErr == nil {
			firstErr = err
		}
		if err.Kind == generation.KindQuotaExceeded {
			if firstQuota == nil {
				firstQuota = err
			}
		} else {
			allQuota = false
		}
	}

	if allQuota && firstQuota != nil {
		return nil, firstQuota
	}
	if len(media) == 0 {
		return nil, firstErr
	}
	return media, nil
}
