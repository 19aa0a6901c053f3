// Package apiclient talks to the panel HTTP API. Every call is a single
// attempt; callers decide what a failure means.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	HeaderCSRF = "X-CSRF-TOKEN"

	maxBodyBytes = 4 << 20
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiclient_requests_total",
		Help: "Panel API requests by method and response status.",
	}, []string{"method", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apiclient_request_duration_seconds",
		Help:    "Panel API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

type Client struct {
	baseURL string
	csrf    string
	bearer  string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

// WithCSRFToken sets the value sent in X-CSRF-TOKEN.
func WithCSRFToken(token string) Option { return func(c *Client) { c.csrf = token } }

// WithBearerToken sets the Authorization bearer credential.
func WithBearerToken(token string) Option { return func(c *Client) { c.bearer = token } }

// WithHTTPClient replaces the underlying client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: obs.HTTPTransport(newTransport(30 * time.Second))},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(zap.String("component", "apiclient"), zap.String("base_url", c.baseURL))
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetCSRFToken swaps the CSRF token, e.g. after fetching it from the server.
func (c *Client) SetCSRFToken(token string) { c.csrf = token }

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do sends one request and returns the raw JSON body of a 2xx response.
// payload may be nil, url.Values (sent as a form) or any JSON-encodable value.
// A non-2xx response yields *HTTPError; an empty 2xx body yields nil.
func (c *Client) Do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	body, contentType, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.csrf != "" {
		req.Header.Set(HeaderCSRF, c.csrf)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		obs.WithTrace(ctx, c.log).Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		obs.WithTrace(ctx, c.log).Debug("request rejected",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s %s: response is not JSON (status %d)", method, path, resp.StatusCode)
	}
	return json.RawMessage(raw), nil
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Put(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, payload)
}

func (c *Client) Patch(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, payload)
}

func (c *Client) Delete(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, payload)
}

// Go starts Do in the background and returns a handle to its result.
func (c *Client) Go(ctx context.Context, method, path string, payload any) *Future {
	return NewFuture(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return c.Do(ctx, method, path, payload)
	})
}

// Decode unmarshals a response body into T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

func encodePayload(payload any) (io.Reader, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return strings.NewReader(p.Encode()), "application/x-www-form-urlencoded", nil
	case json.RawMessage:
		return bytes.NewReader(p), "application/json", nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}
