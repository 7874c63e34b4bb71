package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sniplyy/VibeWall/internal/generation"
)

// DefaultMaxImageAttempts is the total number of submissions per image job.
const DefaultMaxImageAttempts = 15

// ImageRunnerConfig tunes the image retry loop.
type ImageRunnerConfig struct {
	// MaxAttempts is the total number of submissions, including the first.
	MaxAttempts int
	Backoff     generation.Backoff
}

// ImageRunner submits one image request and retries transient failures.
type ImageRunner struct {
	submitter generation.ImageSubmitter
	cfg       ImageRunnerConfig
	logger    *slog.Logger
	rt        runtime
}

// NewImageRunner creates an ImageRunner. A non-positive MaxAttempts falls
// back to DefaultMaxImageAttempts.
func NewImageRunner(
	submitter generation.ImageSubmitter,
	cfg ImageRunnerConfig,
	logger *slog.Logger,
	opts ...Option,
) *ImageRunner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxImageAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageRunner{
		submitter: submitter,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "image_runner")),
		rt:        newRuntime(opts),
	}
}

// Run generates one image. Auth and quota failures return immediately,
// transient failures are retried with backoff until the attempt budget is
// spent, and everything else fails on first sight.
func (r *ImageRunner) Run(ctx context.Context, req generation.Request) (*generation.Media, error) {
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		r.logger.DebugContext(ctx, "Submitting image generation",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxAttempts)
		r.rt.metrics.ObserveAttempt(generation.ModeImage)

		resp, err := r.submitter.GenerateImage(ctx, req)
		if err == nil {
			media, mediaErr := imageMedia(resp)
			if mediaErr == nil {
				r.logger.InfoContext(ctx, "Image generated", "attempt", attempt)
				return media, nil
			}
			err = mediaErr
		}

		classified := generation.Classify(err)
		r.rt.metrics.ObserveFailure(generation.ModeImage, classified.Kind)

		if classified.Kind != generation.KindRetryable {
			r.logger.WarnContext(ctx, "Image generation failed, not retrying",
				"attempt", attempt,
				"kind", classified.Kind.String(),
				"error", classified.Message)
			return nil, classified
		}

		if attempt == r.cfg.MaxAttempts {
			r.logger.WarnContext(ctx, "Maximum image attempts reached",
				"max_attempts", r.cfg.MaxAttempts,
				"error", classified.Message)
			return nil, classified.AsExhausted(attempt)
		}

		delay := r.cfg.Backoff.NextDelay(attempt)
		r.logger.InfoContext(ctx, "Upstream busy, retrying after delay",
			"attempt", attempt,
			"delay", delay,
			"error", classified.Message)

		if err := r.rt.sleep(ctx, delay); err != nil {
			r.logger.WarnContext(ctx, "Image generation cancelled during retry delay",
				"attempt", attempt,
				"ctx_err", err)
			return nil, generation.Classify(fmt.Errorf("image generation cancelled during retry delay: %w", err))
		}
	}

	// Unreachable while MaxAttempts >= 1.
	return nil, generation.Classify(fmt.Errorf("%w: no attempts configured", generation.ErrInvalidConfig))
}

// imageMedia extracts the first inline media part, distinguishing an
// explicit safety block from a silently empty response.
func imageMedia(resp *generation.ImageResponse) (*generation.Media, error) {
	if resp != nil {
		for _, part := range resp.Parts {
			if len(part.Data) == 0 {
				continue
			}
			mimeType := part.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &generation.Media{
				Kind:     generation.MediaKindImage,
				MIMEType: mimeType,
				Data:     part.Data,
			}, nil
		}
	}
	if reason, ok := resp.SafetyReason(); ok {
		return nil, generation.SafetyFilter{Reason: reason}
	}
	return nil, fmt.Errorf("%w in response; the output may have been filtered", generation.ErrNoMedia)
}
