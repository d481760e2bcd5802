// Package api is the client for the media storage backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/mediastore/mediastore-cli/internal/config"
	"github.com/mediastore/mediastore-cli/internal/constants"
	"github.com/mediastore/mediastore-cli/internal/http"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top of
// the client's zerolog logger.
type retryLogger struct {
	c *Client
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.c.logger.Error().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// retryablehttp is chatty at info; keep it at debug
	l.c.logger.Debug().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.c.logger.Debug().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.c.logger.Warn().Fields(keysAndValues).Msg("retry: " + msg)
}

// Client talks to the backend's /files, /upload and /health endpoints.
type Client struct {
	httpClient   *nethttp.Client // retrying, GET only
	uploadClient *nethttp.Client
	retry        *retryablehttp.Client
	baseURL      string
	apiKey       string
	logger       *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRetryMax overrides how many times idempotent GETs are retried.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.retry.RetryMax = n
	}
}

// WithRetryWait overrides the backoff bounds for idempotent GETs.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.retry.RetryWaitMin = min
		c.retry.RetryWaitMax = max
	}
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend base URL is empty: set [server] base_url, MEDIASTORE_URL or --api-url")
	}

	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	uploadClient, err := http.CreateUploadClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure upload client: %w", err)
	}

	c := &Client{
		uploadClient: uploadClient,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		logger:       logging.NewNopLogger(),
	}

	// Wrap with retry logic
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = constants.APIRetryMax
	retryClient.RetryWaitMin = constants.APIRetryWaitMin
	retryClient.RetryWaitMax = constants.APIRetryWaitMax
	retryClient.Logger = &retryLogger{c: c}
	// Hand the final response back so 5xx details reach APIError
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.retry = retryClient

	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = retryClient.StandardClient()

	return c, nil
}

// SetLogger sets the logger for request diagnostics. Nil restores the no-op logger.
func (c *Client) SetLogger(logger *logging.Logger) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c.logger = logger
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*nethttp.Request, string, error) {
	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)
	return req, requestID, nil
}

// doGet performs an authenticated GET through the retrying client.
func (c *Client) doGet(ctx context.Context, path string) (*nethttp.Response, error) {
	req, requestID, err := c.newRequest(ctx, nethttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Str("request_id", requestID).Msg("API call failed")
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(start)).
		Msg("API call")
	return resp, nil
}

// ListFiles fetches the full catalog from GET /files.
func (c *Client) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := c.doGet(ctx, constants.FilesPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(nethttp.MethodGet, constants.FilesPath, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}

	records, err := decodeFileList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file list: %w", err)
	}
	return records, nil
}

// decodeFileList accepts a bare JSON array or an object wrapping it in "files".
func decodeFileList(data []byte) ([]models.FileRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []models.FileRecord{}, nil
	}

	if data[0] == '{' {
		var wrapped struct {
			Files *[]models.FileRecord `json:"files"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Files == nil {
			return nil, errors.New(`expected an array or an object with "files"`)
		}
		return nonNil(*wrapped.Files), nil
	}

	var records []models.FileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return nonNil(records), nil
}

// multipartBody closes the content reader once the request is done with it.
type multipartBody struct {
	io.Reader
	io.Closer
}

func nonNil(records []models.FileRecord) []models.FileRecord {
	if records == nil {
		return []models.FileRecord{}
	}
	return records
}

// BodyOpener returns a fresh reader over the upload content. It is called
// once per request, and again when a 307/308 redirect must resend the body.
type BodyOpener func() (io.ReadCloser, error)

// UploadFile posts one file to POST /upload as multipart field "file" and
// decodes the response. size is the body length, or -1 when unknown. A body
// that implements io.Seeker can be resent after a redirect; any other body
// is sent once.
func (c *Client) UploadFile(ctx context.Context, name string, body io.Reader, size int64) (UploadResult, error) {
	sent := false
	open := func() (io.ReadCloser, error) {
		if sent {
			return nil, errors.New("upload body cannot be resent")
		}
		sent = true
		return io.NopCloser(body), nil
	}

	if seeker, ok := body.(io.Seeker); ok {
		if offset, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			open = func() (io.ReadCloser, error) {
				if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
					return nil, err
				}
				return io.NopCloser(body), nil
			}
		}
	}

	return c.UploadFrom(ctx, name, open, size)
}

// UploadFrom is UploadFile with content produced by open. The request owns
// every reader open returns and closes it.
//
// The body is streamed: the multipart header and trailer are rendered up front
// and stitched around the content, so Content-Length is exact whenever size
// is known.
func (c *Client) UploadFrom(ctx context.Context, name string, open BodyOpener, size int64) (UploadResult, error) {
	var envelope bytes.Buffer
	mw := multipart.NewWriter(&envelope)
	if _, err := mw.CreateFormFile(constants.UploadFormField, filepath.Base(name)); err != nil {
		return nil, fmt.Errorf("failed to build multipart header: %w", err)
	}
	headerLen := envelope.Len()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart trailer: %w", err)
	}
	header := envelope.Bytes()[:headerLen]
	trailer := envelope.Bytes()[headerLen:]

	payload := func() (io.ReadCloser, error) {
		content, err := open()
		if err != nil {
			return nil, err
		}
		return multipartBody{
			Reader: io.MultiReader(bytes.NewReader(header), content, bytes.NewReader(trailer)),
			Closer: content,
		}, nil
	}

	body, err := payload()
	if err != nil {
		return nil, err
	}
	req, requestID, err := c.newRequest(ctx, nethttp.MethodPost, constants.UploadPath, body)
	if err != nil {
		body.Close()
		return nil, err
	}
	req.GetBody = payload
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if size >= 0 {
		req.ContentLength = int64(len(header)) + size + int64(len(trailer))
	} else {
		req.ContentLength = -1
	}

	start := time.Now()
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", constants.UploadPath, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("file", name).
		Int64("bytes", size).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(start)).
		Msg("Upload request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(nethttp.MethodPost, constants.UploadPath, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	return DecodeUploadResult(data)
}

// HealthStatus is the result of one GET /health check.
type HealthStatus struct {
	StatusCode int           `json:"status_code" yaml:"status_code"`
	Status     string        `json:"status,omitempty" yaml:"status,omitempty"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}

// Health checks GET /health once. Any 2xx is healthy; the body is optional.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, _, err := c.newRequest(ctx, nethttp.MethodGet, constants.HealthPath, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	// Single checks go straight out; CheckHealth owns the retry policy
	resp, err := c.retry.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", constants.HealthPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(nethttp.MethodGet, constants.HealthPath, resp)
	}

	status := &HealthStatus{StatusCode: resp.StatusCode, Latency: time.Since(start)}
	var body struct {
		Status string `json:"status"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		if json.Unmarshal(data, &body) == nil {
			status.Status = body.Status
		}
	}
	return status, nil
}

// CheckHealth checks /health, retrying network and 5xx failures with backoff.
func (c *Client) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	var status *HealthStatus
	cfg := http.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, errType http.ErrorType) {
		c.logger.Debug().Err(err).Int("attempt", attempt).Str("class", http.ErrorTypeName(errType)).Msg("Retrying health check")
	}

	err := http.ExecuteWithRetry(ctx, cfg, func() error {
		var err error
		status, err = c.Health(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}
