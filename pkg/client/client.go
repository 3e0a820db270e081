package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/usestring/apiscout-mcp/pkg/scouterr"
)

const (
	// DefaultTimeout bounds a whole request including reading the body.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes int64 = 10 << 20
	// DefaultUserAgent is sent when a request does not set its own.
	DefaultUserAgent = "apiscout-mcp"
)

// Doer executes outbound HTTP requests.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Client is the net/http backed Doer.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodyBytes caps response bodies. Larger bodies fail the request.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// New creates a new Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and returns the full response. Transport errors and non-2xx
// statuses are reported as scouterr.KindTransportFailure; for the latter the
// cause is a *StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	method := req.method()

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, scouterr.TransportFailure("parsing URL", err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, scouterr.TransportFailure("creating request", err)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", method),
			slog.String("host", u.Host),
			slog.String("path", u.Path),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, scouterr.TransportFailure("executing request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, scouterr.TransportFailure("reading response body", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, scouterr.TransportFailure(
			fmt.Sprintf("response body exceeds %d bytes", c.maxBodyBytes), nil)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("HTTP request returned error",
			slog.String("method", method),
			slog.String("host", u.Host),
			slog.String("path", u.Path),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, scouterr.TransportFailure("unexpected status", newStatusError(out))
	}

	slog.Debug("HTTP request completed",
		slog.String("method", method),
		slog.String("host", u.Host),
		slog.String("path", u.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return out, nil
}
