package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sniplyy/VibeWall/internal/config"
	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/Sniplyy/VibeWall/internal/redact"
)

const (
	// maxErrorBody bounds how much of a failed response ends up in an error.
	maxErrorBody = 2 << 10
	// maxDownloadBytes bounds a single downloaded video.
	maxDownloadBytes = 512 << 20
	// defaultMediaType is assumed when the download has no Content-Type.
	defaultMediaType = "video/mp4"
)

// RESTClient talks to the REST surface directly. It is the fallback
// generation.OperationPoller and the generation.Downloader for finished
// videos. Every request authenticates with the key query parameter.
type RESTClient struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	apiKey     string
	logger     *slog.Logger
}

// NewRESTClient creates a RESTClient. A nil httpClient uses http.DefaultClient.
func NewRESTClient(logger *slog.Logger, cfg config.LLMConfig, httpClient *http.Client) (*RESTClient, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: %s: gemini API key cannot be empty",
			generation.ErrInvalidConfig, generation.MessageCredentialInvalid)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", generation.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	version := cfg.APIVersion
	if version == "" {
		version = "v1beta"
	}

	return &RESTClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: strings.Trim(version, "/"),
		apiKey:     cfg.GeminiAPIKey,
		logger:     logger.With(slog.String("component", "gemini_rest")),
	}, nil
}

// PollOperation fetches GET {base}/{version}/{name}.
func (c *RESTClient) PollOperation(ctx context.Context, name string) (*generation.OperationHandle, error) {
	if name == "" {
		return nil, ErrEmptyOperationName
	}

	endpoint, err := c.authorize(c.baseURL + "/" + c.apiVersion + "/" + strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("REST polling failed: %w", err)
	}

	body, _, err := c.get(ctx, endpoint, maxErrorBody<<4)
	if err != nil {
		return nil, fmt.Errorf("REST polling failed: %w", err)
	}

	handle, err := generation.DecodeOperation(body)
	if err != nil {
		return nil, fmt.Errorf("REST polling failed: %w", err)
	}
	return handle, nil
}

// Download fetches a finished video. The key is appended to whatever query
// the result URI already carries.
func (c *RESTClient) Download(ctx context.Context, uri string) ([]byte, string, error) {
	endpoint, err := c.authorize(uri)
	if err != nil {
		return nil, "", fmt.Errorf("download video: %w", err)
	}

	c.logger.DebugContext(ctx, "Downloading generated video")
	data, contentType, err := c.get(ctx, endpoint, maxDownloadBytes)
	if err != nil {
		return nil, "", fmt.Errorf("download video: %w", err)
	}
	if contentType == "" {
		contentType = defaultMediaType
	}
	return data, contentType, nil
}

// authorize adds the key query parameter to raw.
func (c *RESTClient) authorize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.New("invalid URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("URL must be absolute")
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get performs a GET and returns the body and media type. Transport errors
// are unwrapped from *url.Error because that type prints the full URL,
// key included.
func (c *RESTClient) get(ctx context.Context, endpoint string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", errors.New("failed to build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", fmt.Errorf("status %d: %s",
			resp.StatusCode, redact.String(strings.TrimSpace(string(snippet))))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("response exceeds %d bytes", limit)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return data, contentType, nil
}
