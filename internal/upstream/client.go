// Package upstream talks to the platform's admin REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// DefaultTimeout bounds a single backend call when none is configured.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client issues one request per call against the admin API. It never
// retries and holds no per-user state; the bearer token is passed on every
// call.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient returns a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call describes one backend request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	token  string
	// anonymous skips the token requirement (login).
	anonymous bool
	// detail turns a 404 into a NotFound error.
	detail bool
}

// do performs c and returns the envelope's result payload.
func (c *Client) do(ctx context.Context, req call) (json.RawMessage, error) {
	if !req.anonymous && strings.TrimSpace(req.token) == "" {
		return nil, domain.ErrUnauthenticated
	}

	target := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if id := pkg.RequestIDFrom(ctx); id != "" {
		httpReq.Header.Set(pkg.RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "upstream unreachable",
			slog.String("method", req.method),
			slog.String("path", target.Path),
			slog.String("error", err.Error()),
		)
		return nil, domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "upstream call",
		slog.String("method", req.method),
		slog.String("path", target.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		if req.detail && resp.StatusCode == http.StatusNotFound {
			return nil, domain.NewNotFoundError("")
		}
		c.logger.WarnContext(ctx, "upstream http error",
			slog.String("method", req.method),
			slog.String("path", target.Path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, domain.NewHTTPError(resp.StatusCode, statusText(resp))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewNetworkError(err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &domain.FetchError{
			Kind:    domain.KindRejected,
			Status:  resp.StatusCode,
			Message: "malformed response",
			Err:     err,
		}
	}
	if !env.Succeeded() {
		msg := env.RejectionMessage()
		c.logger.WarnContext(ctx, "upstream rejected request",
			slog.String("method", req.method),
			slog.String("path", target.Path),
			slog.String("message", msg),
		)
		return nil, domain.NewRejectedError(resp.StatusCode, msg)
	}
	return env.Result, nil
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// decodeResult unmarshals a result payload into out. An empty payload leaves
// out untouched.
func decodeResult(raw json.RawMessage, out any) error {
	if !hasResult(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(err)
	}
	return nil
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var fe *domain.FetchError
	return errors.As(err, &fe) && fe.Kind == domain.KindNetwork
}
