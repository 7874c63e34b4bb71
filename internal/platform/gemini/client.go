package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sniplyy/VibeWall/internal/config"
	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// Poll breaker defaults.
const (
	DefaultPollBreakerFailures = 3
	DefaultPollBreakerCooldown = time.Minute
)

// Client implements generation.ImageSubmitter, generation.VideoSubmitter and
// the primary generation.OperationPoller on top of the genai SDK.
type Client struct {
	sdk    *genai.Client
	cfg    config.LLMConfig
	logger *slog.Logger

	// pollBreaker trips after repeated SDK poll failures so later polls go
	// straight to the REST fallback instead of waiting on a broken channel.
	pollBreaker *gobreaker.CircuitBreaker[*genai.GenerateVideosOperation]
}

type clientOptions struct {
	httpClient      *http.Client
	breakerFailures uint32
	breakerCooldown time.Duration
}

// ClientOption customises NewClient.
type ClientOption func(*clientOptions)

// WithHTTPClient sets the HTTP client the SDK uses.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithPollBreaker sets how many consecutive SDK poll failures open the
// breaker and how long it stays open.
func WithPollBreaker(failures uint32, cooldown time.Duration) ClientOption {
	return func(o *clientOptions) {
		if failures > 0 {
			o.breakerFailures = failures
		}
		if cooldown > 0 {
			o.breakerCooldown = cooldown
		}
	}
}

// NewClient creates a Client.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...ClientOption) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	o := clientOptions{
		breakerFailures: DefaultPollBreakerFailures,
		breakerCooldown: DefaultPollBreakerCooldown,
	}
	for _, opt := range opts {
		opt(&o)
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	logger = logger.With(slog.String("component", "gemini_client"))
	c := &Client{
		sdk:    sdk,
		cfg:    cfg,
		logger: logger,
	}
	c.pollBreaker = gobreaker.NewCircuitBreaker[*genai.GenerateVideosOperation](gobreaker.Settings{
		Name:        "gemini-sdk-poll",
		MaxRequests: 1,
		Timeout:     o.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	return c, nil
}

// GenerateImage sends one image generation request. Upstream errors are
// returned unwrapped so the classifier sees the SDK's APIError.
func (c *Client) GenerateImage(ctx context.Context, req generation.Request) (*generation.ImageResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.logger.DebugContext(ctx, "Calling image model",
		"model", c.cfg.ImageModel,
		"references", len(req.ReferenceImages),
		"aspect_ratio", req.AspectRatio,
		"image_size", req.ImageSize)

	resp, err := c.sdk.Models.GenerateContent(ctx, c.cfg.ImageModel, imageContents(req), imageConfig(req))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNilResponse
	}
	return imageResponse(resp), nil
}

// SubmitVideo starts a video generation and returns its initial operation.
func (c *Client) SubmitVideo(ctx context.Context, job generation.VideoJob) (*generation.OperationHandle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start, cfg := videoSource(job)
	op, err := c.sdk.Models.GenerateVideos(ctx, job.Model, job.Prompt, start, cfg)
	if err != nil {
		return nil, err
	}
	return operationHandle(op)
}

// PollOperation fetches operation state through the SDK. While the breaker
// is open it fails immediately with gobreaker.ErrOpenState.
func (c *Client) PollOperation(ctx context.Context, name string) (*generation.OperationHandle, error) {
	if name == "" {
		return nil, ErrEmptyOperationName
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	op, err := c.pollBreaker.Execute(func() (*genai.GenerateVideosOperation, error) {
		return c.sdk.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: name}, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("sdk poll: %w", err)
	}
	return operationHandle(op)
}

// PollBreakerState reports the SDK poll breaker state for health checks.
func (c *Client) PollBreakerState() gobreaker.State {
	return c.pollBreaker.State()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// validateConfig checks the settings every call depends on.
func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		// The credential marker lets the classifier report this as an
		// auth failure if it ever reaches a caller.
		return fmt.Errorf("%w: %s: gemini API key cannot be empty",
			generation.ErrInvalidConfig, generation.MessageCredentialInvalid)
	}
	if cfg.ImageModel == "" {
		return fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}
	return nil
}
