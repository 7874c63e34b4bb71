package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Sniplyy/VibeWall/internal/api"
	"github.com/Sniplyy/VibeWall/internal/config"
	"github.com/Sniplyy/VibeWall/internal/events"
	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/Sniplyy/VibeWall/internal/orchestrator"
	"github.com/Sniplyy/VibeWall/internal/platform/gemini"
	"github.com/Sniplyy/VibeWall/internal/platform/metrics"
	"github.com/Sniplyy/VibeWall/internal/task"
)

// Application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Upstream transports
	sdk  *gemini.Client
	rest *gemini.RESTClient

	// Generation pipeline
	coordinator *orchestrator.Coordinator

	// Task handling
	store   *task.MemoryStore
	runner  *task.TaskRunner
	emitter *events.InMemoryEmitter
}

type options struct {
	httpClient *http.Client
	sleeper    orchestrator.Sleeper
}

// Option customises New.
type Option func(*options)

// WithHTTPClient routes every upstream call through c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithSleeper replaces the wall-clock sleeper used for backoff, stagger and
// polling delays.
func WithSleeper(s orchestrator.Sleeper) Option {
	return func(o *options) {
		o.sleeper = s
	}
}

// New creates an Application with every dependency initialized. The task
// runner is not started; call Start before serving.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &Application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	var err error
	app.sdk, err = gemini.NewClient(ctx, logger, cfg.LLM,
		gemini.WithHTTPClient(o.httpClient),
		gemini.WithPollBreaker(cfg.Generation.PollBreakerFailures, cfg.Generation.PollBreakerCooldown),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	app.rest, err = gemini.NewRESTClient(logger, cfg.LLM, o.httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini REST client: %w", err)
	}
	logger.Info("Gemini transports initialized",
		"image_model", cfg.LLM.ImageModel,
		"api_version", cfg.LLM.APIVersion)

	runtimeOpts := []orchestrator.Option{orchestrator.WithMetrics(app.metrics)}
	if o.sleeper != nil {
		runtimeOpts = append(runtimeOpts, orchestrator.WithSleeper(o.sleeper))
	}
	app.coordinator = newCoordinator(cfg, app.sdk, app.rest, logger, runtimeOpts)

	app.store = task.NewMemoryStore()
	app.runner = task.NewTaskRunner(app.store, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		Retention:   cfg.Task.ResultRetention,
	}, logger)
	app.runner.SetMetrics(app.metrics)

	app.emitter = events.NewInMemoryEmitter(logger)
	app.emitter.Subscribe(events.TypeGenerationRequested, task.NewTaskFactoryEventHandler(
		task.NewGenerationTaskFactory(app.coordinator, logger),
		app.runner,
		logger,
	))

	logger.Info("Application initialized successfully",
		"variation_count", cfg.Generation.VariationCount,
		"workers", cfg.Task.WorkerCount)
	return app, nil
}

// newCoordinator wires the image and video runners to the transports.
// The SDK client is the primary poller and the REST client the fallback.
func newCoordinator(
	cfg *config.Config,
	sdk *gemini.Client,
	rest *gemini.RESTClient,
	logger *slog.Logger,
	opts []orchestrator.Option,
) *orchestrator.Coordinator {
	gen := cfg.Generation

	images := orchestrator.NewImageRunner(sdk, orchestrator.ImageRunnerConfig{
		MaxAttempts: gen.MaxImageAttempts,
		Backoff: generation.Backoff{
			MinDelay:     gen.RetryMinDelay,
			GrowthFactor: gen.RetryGrowthFactor,
			MaxDelay:     gen.RetryMaxDelay,
			JitterMax:    gen.RetryJitterMax,
		},
	}, logger, opts...)

	videos := orchestrator.NewVideoRunner(sdk, sdk, rest, rest, orchestrator.VideoRunnerConfig{
		FastModel:     cfg.LLM.VideoFastModel,
		MultiRefModel: cfg.LLM.VideoMultiRefModel,
		Resolution:    gen.VideoResolution,
		PollInterval:  gen.VideoPollInterval,
		MaxPolls:      gen.MaxVideoPolls,
	}, logger, opts...)

	return orchestrator.NewCoordinator(images, videos, orchestrator.CoordinatorConfig{
		Count:         gen.VariationCount,
		Stagger:       gen.VariationStagger,
		MaxConcurrent: gen.MaxConcurrentLanes,
	}, logger, opts...)
}

// Generator returns the coordinator for callers that generate synchronously.
func (app *Application) Generator() *orchestrator.Coordinator {
	return app.coordinator
}

// Handler returns the HTTP API.
func (app *Application) Handler() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Emitter: app.emitter,
		Store:   app.store,
		Metrics: app.metrics,
		Breaker: app.sdk,
		Logger:  app.logger,
	})
}

// Start launches the background task runner.
func (app *Application) Start() error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	return nil
}

// Stop drains the task runner until ctx is done.
func (app *Application) Stop(ctx context.Context) error {
	if err := app.runner.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop task runner: %w", err)
	}
	app.logger.Info("Application shutdown completed")
	return nil
}
