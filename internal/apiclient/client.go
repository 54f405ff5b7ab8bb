package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hrintake/internal/config"
	"hrintake/internal/errors"
	"hrintake/internal/observability"
	"hrintake/internal/types"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 * 1024

// Client talks to the remote intake API
type Client struct {
	cfg        config.APIConfig
	base       *url.URL
	httpClient *http.Client
	reads      *Breaker
	metrics    *observability.Metrics
	logger     *errors.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout should be zero;
// dashboard calls are bounded per request and submissions are not bounded.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records every call through m
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API described by cfg
func New(cfg config.APIConfig, logger *errors.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid intake API base URL", err).
			WithContext("base_url", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		cfg:        cfg,
		base:       base,
		httpClient: &http.Client{Transport: http.DefaultTransport},
		reads:      NewBreaker("reads", cfg.CircuitBreaker, logger),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BreakerStats reports the read breaker state
func (c *Client) BreakerStats() map[string]any {
	return c.reads.GetStats()
}

// Healthy reports whether dashboard reads are currently allowed through
func (c *Client) Healthy() bool {
	return c.reads.IsHealthy()
}

// SubmitApplication posts an encoded application. It is never retried and
// is bounded only by ctx.
func (c *Client) SubmitApplication(ctx context.Context, body io.Reader, contentType string) error {
	if sized, ok := body.(interface{ Len() int }); ok {
		c.metrics.RecordPayloadSize(ctx, "submit_application", int64(sized.Len()))
	}

	return c.metrics.TrackAPICall(ctx, "submit_application", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodPost, c.cfg.SubmitPath, nil, body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)

		_, err = c.do(req)
		if err != nil {
			c.logError(err, "Application submission failed")
		}
		return err
	})
}

// GetCounts returns the number of applications per role
func (c *Client) GetCounts(ctx context.Context) (types.Counts, error) {
	var resp types.CountsResponse
	body, err := c.read(ctx, "get_counts", c.cfg.CountPath, nil)
	if err != nil {
		return types.Counts{}, err
	}
	if err := decode(body, &resp); err != nil {
		return types.Counts{}, err
	}
	return resp.Data, nil
}

// ListApplications returns one page of applications matching q
func (c *Client) ListApplications(ctx context.Context, q types.ListQuery) (types.ListResponse, error) {
	var resp types.ListResponse
	body, err := c.read(ctx, "list_applications", c.cfg.ListPath, q.Values())
	if err != nil {
		return types.ListResponse{}, err
	}
	if err := decode(body, &resp); err != nil {
		return types.ListResponse{}, err
	}
	if resp.TotalPages < 1 {
		resp.TotalPages = 1
	}
	return resp, nil
}

// DownloadPDF fetches the rendered PDF of one application
func (c *Client) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "application id is required", nil)
	}
	return c.read(ctx, "download_pdf", strings.TrimRight(c.cfg.PDFPath, "/")+"/"+url.PathEscape(id), nil)
}

// SendEmail asks the API to send and log a status email
func (c *Client) SendEmail(ctx context.Context, email types.EmailRequest) (types.EmailResponse, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return types.EmailResponse{}, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode email", err)
	}

	var resp types.EmailResponse
	err = c.metrics.TrackAPICall(ctx, "send_email", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		req, err := c.newRequest(ctx, http.MethodPost, c.cfg.EmailPath, nil, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		body, err := c.do(req)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		// The response body is optional and informational
		if json.Unmarshal(body, &resp) != nil {
			resp = types.EmailResponse{}
		}
		return nil
	})
	return resp, err
}

// read performs a bounded GET through the read breaker
func (c *Client) read(ctx context.Context, operation, path string, query url.Values) ([]byte, error) {
	var body []byte
	err := c.metrics.TrackAPICall(ctx, operation, func(ctx context.Context) error {
		var err error
		body, err = c.reads.Execute(func() ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()

			req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
			if err != nil {
				return nil, err
			}
			return c.do(req)
		})
		return err
	})
	if err != nil {
		c.logError(err, "Intake API read failed", "operation", operation)
		return nil, err
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build request", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json, application/pdf;q=0.9, */*;q=0.8")
	return req, nil
}

// do sends req and returns the body of a 2xx response
func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(req, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(req, resp.StatusCode, raw)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(req, err)
	}

	if c.logger != nil {
		c.logger.Debug("Intake API call completed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"bytes", len(body),
			"duration", time.Since(start))
	}
	return body, nil
}

func transportError(req *http.Request, err error) error {
	code := errors.ErrCodeRemoteUnavailable
	switch req.Context().Err() {
	case context.DeadlineExceeded:
		code = errors.ErrCodeNetworkTimeout
	case context.Canceled:
		code = errors.ErrCodeRequestCanceled
	}
	return errors.NewNetworkError(code, fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err).
		WithContext("path", req.URL.Path)
}

// statusError turns a non-2xx answer into a network error carrying the server's message
func statusError(req *http.Request, status int, raw []byte) error {
	appErr := errors.NewNetworkError(errors.ErrCodeRemoteRequestFailed,
		fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, status), nil).
		WithContext(errors.ContextStatusCode, status).
		WithContext("path", req.URL.Path)

	if msg := serverMessage(raw); msg != "" {
		appErr.WithContext(errors.ContextServerMessage, msg)
	}
	return appErr
}

// serverMessage extracts the "message" or "error" field of a JSON error body
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if s, ok := body.Error.(string); ok {
		return s
	}
	return ""
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewNetworkError(errors.ErrCodeInvalidFormat, "unexpected response from intake API", err)
	}
	return nil
}

func (c *Client) logError(err error, msg string, args ...any) {
	if c.logger != nil {
		c.logger.LogError(err, msg, args...)
	}
}
