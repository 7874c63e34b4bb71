package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
)

// Video defaults.
const (
	DefaultVideoFastModel     = "veo-3.1-fast-generate-preview"
	DefaultVideoMultiRefModel = "veo-3.1-generate-preview"
	DefaultVideoResolution    = "720p"
	DefaultVideoPollInterval  = 10 * time.Second
	DefaultMaxVideoPolls      = 180
)

// Poll channel labels used in logs and metrics.
const (
	ChannelSDK  = "sdk"
	ChannelREST = "rest"
)

// VideoRunnerConfig tunes video planning and polling.
type VideoRunnerConfig struct {
	FastModel     string
	MultiRefModel string
	Resolution    string
	PollInterval  time.Duration
	// MaxPolls bounds the polling loop. Zero means unbounded.
	MaxPolls int
}

func (c VideoRunnerConfig) withDefaults() VideoRunnerConfig {
	if c.FastModel == "" {
		c.FastModel = DefaultVideoFastModel
	}
	if c.MultiRefModel == "" {
		c.MultiRefModel = DefaultVideoMultiRefModel
	}
	if c.Resolution == "" {
		c.Resolution = DefaultVideoResolution
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultVideoPollInterval
	}
	if c.MaxPolls < 0 {
		c.MaxPolls = 0
	}
	return c
}

// VideoRunner submits a video generation, polls it to completion and
// downloads the result.
type VideoRunner struct {
	submitter  generation.VideoSubmitter
	primary    generation.OperationPoller
	fallback   generation.OperationPoller
	downloader generation.Downloader
	cfg        VideoRunnerConfig
	logger     *slog.Logger
	rt         runtime
}

// NewVideoRunner creates a VideoRunner. primary may be nil, in which case
// every poll goes straight to fallback.
func NewVideoRunner(
	submitter generation.VideoSubmitter,
	primary generation.OperationPoller,
	fallback generation.OperationPoller,
	downloader generation.Downloader,
	cfg VideoRunnerConfig,
	logger *slog.Logger,
	opts ...Option,
) *VideoRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoRunner{
		submitter:  submitter,
		primary:    primary,
		fallback:   fallback,
		downloader: downloader,
		cfg:        cfg.withDefaults(),
		logger:     logger.With(slog.String("component", "video_runner")),
		rt:         newRuntime(opts),
	}
}

// VideoAspectRatio maps a wallpaper ratio onto the two ratios the video
// model accepts. Wide ratios become 16:9, everything else 9:16.
func VideoAspectRatio(ar generation.AspectRatio) string {
	switch ar {
	case generation.AspectRatioLandscape, generation.AspectRatioUltrawide,
		generation.AspectRatio3x2, generation.AspectRatio4x3:
		return string(generation.AspectRatioLandscape)
	default:
		return string(generation.AspectRatioPortrait)
	}
}

// EnhancePrompt appends the requested duration and frame rate, which the
// model only understands as prose.
func EnhancePrompt(prompt string, durationSeconds, fps int) string {
	return fmt.Sprintf("%s. Create a smooth, high-quality video with a duration of approx %d seconds at %dfps.",
		prompt, durationSeconds, fps)
}

// PlanVideo turns a request into a concrete submission. A single reference
// image becomes the start frame; several become asset references, which
// require the multi-reference model and force 16:9.
func (c VideoRunnerConfig) PlanVideo(req generation.Request) generation.VideoJob {
	c = c.withDefaults()
	req = req.WithDefaults()

	job := generation.VideoJob{
		Model:       c.FastModel,
		Prompt:      EnhancePrompt(req.Prompt, req.DurationSeconds, req.FPS),
		AspectRatio: VideoAspectRatio(req.AspectRatio),
		Resolution:  c.Resolution,
	}

	switch n := len(req.ReferenceImages); {
	case n > 1:
		job.Model = c.MultiRefModel
		job.AspectRatio = string(generation.AspectRatioLandscape)
		job.References = append([]generation.InlineImage(nil), req.ReferenceImages...)
	case n == 1:
		start := req.ReferenceImages[0]
		job.StartFrame = &start
	}
	return job
}

// Run generates one video.
func (r *VideoRunner) Run(ctx context.Context, req generation.Request) (*generation.Media, error) {
	job := r.cfg.PlanVideo(req)
	logger := r.logger.With("model", job.Model, "aspect_ratio", job.AspectRatio)

	logger.InfoContext(ctx, "Submitting video generation",
		"references", len(job.References),
		"start_frame", job.StartFrame != nil)
	r.rt.metrics.ObserveAttempt(generation.ModeVideo)

	handle, err := r.submitter.SubmitVideo(ctx, job)
	if err != nil {
		return nil, r.fail(ctx, logger, submissionFailure(err))
	}
	if handle == nil || handle.Name == "" {
		return nil, r.fail(ctx, logger, generation.Classify(
			fmt.Errorf("%w: video submission returned no operation name", generation.ErrFatal)))
	}
	name := handle.Name
	logger = logger.With("operation", name)

	handle, err = r.await(ctx, logger, name, handle)
	if err != nil {
		// Polling never yields a retryable outcome to the caller.
		return nil, r.fail(ctx, logger, generation.Classify(err).AsFatal())
	}

	if handle.Error != nil {
		return nil, r.fail(ctx, logger, generation.Classify(handle.Error))
	}

	uri, ok := handle.ResultURI()
	if !ok {
		if reason, filtered := handle.FilterReason(); filtered {
			return nil, r.fail(ctx, logger, generation.Classify(generation.SafetyFilter{Reason: reason}))
		}
		return nil, r.fail(ctx, logger, generation.Classify(
			fmt.Errorf("%w: no video URI in completed operation; the output may have been filtered or the response is malformed",
				generation.ErrNoMedia)).AsFatal())
	}

	data, mimeType, err := r.downloader.Download(ctx, uri)
	if err != nil {
		return nil, r.fail(ctx, logger, generation.Classify(
			fmt.Errorf("failed to download generated video: %w", err)).AsFatal())
	}
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	logger.InfoContext(ctx, "Video generated", "bytes", len(data))
	return &generation.Media{
		Kind:     generation.MediaKindVideo,
		MIMEType: mimeType,
		Data:     data,
		URI:      uri,
	}, nil
}

// await polls until the operation is terminal.
func (r *VideoRunner) await(
	ctx context.Context,
	logger *slog.Logger,
	name string,
	handle *generation.OperationHandle,
) (*generation.OperationHandle, error) {
	for polls := 0; !handle.Terminal(); {
		if r.cfg.MaxPolls > 0 && polls >= r.cfg.MaxPolls {
			return nil, fmt.Errorf("%w: video operation did not complete after %d status checks",
				generation.ErrFatal, polls)
		}
		if err := r.rt.sleep(ctx, r.cfg.PollInterval); err != nil {
			return nil, fmt.Errorf("video polling cancelled: %w", err)
		}
		polls++

		next, err := r.poll(ctx, logger, name)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "Polled video operation", "poll", polls, "done", next.Terminal())
		handle = next
	}
	return handle, nil
}

// poll asks the primary channel first and falls back to REST on any error.
func (r *VideoRunner) poll(ctx context.Context, logger *slog.Logger, name string) (*generation.OperationHandle, error) {
	var primaryErr error
	if r.primary != nil {
		next, err := r.primary.PollOperation(ctx, name)
		if err == nil && next != nil {
			r.rt.metrics.ObservePoll(ChannelSDK, true)
			return next, nil
		}
		if err == nil {
			err = errors.New("empty operation")
		}
		primaryErr = err
		r.rt.metrics.ObservePoll(ChannelSDK, false)
		logger.WarnContext(ctx, "SDK polling failed, attempting REST fallback", "error", err)
	}

	next, err := r.fallback.PollOperation(ctx, name)
	if err == nil && next != nil {
		r.rt.metrics.ObservePoll(ChannelREST, true)
		return next, nil
	}
	if err == nil {
		err = errors.New("empty operation")
	}
	r.rt.metrics.ObservePoll(ChannelREST, false)
	logger.ErrorContext(ctx, "Critical polling failure", "sdk_error", primaryErr, "rest_error", err)

	// Both channels failing is terminal, whatever the underlying errors say.
	return nil, generation.Classify(fmt.Errorf("%w: %w", generation.ErrPollUnavailable, errors.Join(primaryErr, err))).AsFatal()
}

// submissionFailure keeps the fast-fail kinds and demotes everything else,
// since submissions are never retried.
func submissionFailure(err error) *generation.ClassifiedError {
	classified := generation.Classify(err)
	switch classified.Kind {
	case generation.KindAuthInvalid, generation.KindQuotaExceeded:
		return classified
	default:
		return classified.AsFatal()
	}
}

func (r *VideoRunner) fail(ctx context.Context, logger *slog.Logger, err *generation.ClassifiedError) *generation.ClassifiedError {
	r.rt.metrics.ObserveFailure(generation.ModeVideo, err.Kind)
	logger.WarnContext(ctx, "Video generation failed",
		"kind", err.Kind.String(),
		"error", err.Message)
	return err
}
