package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/arin/codeaudit/internal/config"
)

const (
	defaultReadTimeout = 60 * time.Second
	dialTimeout        = 10 * time.Second
)

// Client streams completions from an Ollama-style /api/generate endpoint.
type Client struct {
	model       string
	apiURL      string
	readTimeout time.Duration
	httpClient  *http.Client
}

// Option configures Client behavior.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithReadTimeout bounds how long the client waits for the next chunk.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// New creates a Client for the given endpoint and model.
func New(apiURL, model string, opts ...Option) *Client {
	c := &Client{
		model:       model,
		apiURL:      apiURL,
		readTimeout: defaultReadTimeout,
		// No overall Timeout: a healthy stream may run for minutes.
		// Stalls are caught by the per-read timeout instead.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient creates a Client from the loaded configuration. The transport
// bounds connection setup so an unreachable host fails fast.
func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   dialTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return New(cfg.UpstreamURL, cfg.Model,
		WithReadTimeout(cfg.Timeout()),
		WithHTTPClient(&http.Client{Transport: transport}),
	)
}

// Endpoint returns the URL completions are requested from.
func (c *Client) Endpoint() string {
	return c.apiURL
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Stream posts the prompt with streaming enabled and returns the response
// body. Errors before the body is available wrap ErrUpstreamUnavailable;
// so do read errors on the returned body. Cancelling ctx aborts the
// upstream request. The caller must Close the body.
func (c *Client) Stream(ctx context.Context, prompt string, tokenLimit int) (io.ReadCloser, error) {
	body, err := json.Marshal(generateRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: tokenLimit,
		Stream:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	watchdog := newWatchdog(c.readTimeout, cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		watchdog.stop()
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		watchdog.stop()
		cancel()
		if watchdog.fired() {
			return nil, fmt.Errorf("%w: no response from %s within %s", ErrUpstreamUnavailable, c.apiURL, c.readTimeout)
		}
		return nil, fmt.Errorf("%w: could not reach %s: %v", ErrUpstreamUnavailable, c.apiURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer resp.Body.Close()
		watchdog.stop()
		return nil, c.statusError(resp)
	}

	return &timeoutBody{rc: resp.Body, watchdog: watchdog, cancel: cancel}, nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(raw))
	if strings.Contains(msg, "model") && strings.Contains(msg, "not found") {
		msg = fmt.Sprintf("model %q not found (run: ollama pull %s)", c.model, c.model)
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: msg, Model: c.model}
}
