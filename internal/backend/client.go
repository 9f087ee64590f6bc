package backend

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
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"uleaf-admin/internal/config"
)

var (
	ErrNoToken      = errors.New("no auth token available")
	ErrNoConnection = errors.New("No internet connection")
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "backend_request_duration_seconds",
	Help:    "Latency of Cloud Functions calls by endpoint and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint", "status"})

// ConfigurationError reports a logical endpoint with no configured URL.
type ConfigurationError struct {
	Endpoint string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("endpoint %q is not configured", e.Endpoint)
}

// APIError is a failed call: a non-2xx status or a success:false envelope.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// TokenSource yields the bearer token for the next call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Connectivity is consulted before each call when configured.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Endpoints that get a deployment hint on 404.
var deployHint = map[string]bool{
	config.EndpointCreateDiscount:       true,
	config.EndpointUpdateDiscount:       true,
	config.EndpointGetDiscounts:         true,
	config.EndpointGetDiscount:          true,
	config.EndpointDeleteDiscount:       true,
	config.EndpointValidateDiscountCode: true,
	config.EndpointGenerateInvoice:      true,
	config.EndpointGetInvoicePDF:        true,
}

type Options struct {
	Endpoints  map[string]string
	HTTPClient *http.Client
	Tokens     TokenSource
	Probe      Connectivity
	Logger     *slog.Logger
}

// Client calls the marketplace Cloud Functions.
type Client struct {
	endpoints map[string]string
	http      *http.Client
	tokens    TokenSource
	probe     Connectivity
	logger    *slog.Logger
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}
	eps := make(map[string]string, len(opts.Endpoints))
	for k, v := range opts.Endpoints {
		eps[k] = v
	}
	return &Client{endpoints: eps, http: hc, tokens: tokens, probe: opts.Probe, logger: logger}
}

// Endpoint resolves a logical endpoint name to its URL.
func (c *Client) Endpoint(name string) (string, error) {
	u, ok := c.endpoints[name]
	if !ok || u == "" {
		return "", &ConfigurationError{Endpoint: name}
	}
	return u, nil
}

type request struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     any
}

// do performs the call and returns the decoded envelope.
func (c *Client) do(ctx context.Context, req request) (*envelope, error) {
	base, err := c.Endpoint(req.endpoint)
	if err != nil {
		return nil, err
	}
	if c.probe != nil && !c.probe.Online(ctx) {
		return nil, ErrNoConnection
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	target := base
	if req.path != "" {
		target = strings.TrimRight(base, "/") + "/" + url.PathEscape(req.path)
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", req.endpoint, err)
		}
		body = bytes.NewReader(buf)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		requestDuration.WithLabelValues(req.endpoint, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn("backend call failed", "endpoint", req.endpoint, "err", err)
		return nil, fmt.Errorf("call %s: %w", req.endpoint, err)
	}
	defer resp.Body.Close()
	requestDuration.WithLabelValues(req.endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Endpoint: req.endpoint,
			Status:   resp.StatusCode,
			Message:  errorMessage(raw, resp.StatusCode),
		}
		if resp.StatusCode == http.StatusNotFound && deployHint[req.endpoint] {
			apiErr.Message += fmt.Sprintf(" (please deploy the Cloud Function %s)", req.endpoint)
		}
		c.logger.Warn("backend returned error", "endpoint", req.endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.endpoint, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.message()
		if msg == "" {
			msg = "request failed"
		}
		return nil, &APIError{Endpoint: req.endpoint, Status: resp.StatusCode, Message: msg}
	}
	return env, nil
}

// errorMessage extracts message || error from a JSON body, then falls back
// to the raw text, then to a generic status line.
func errorMessage(raw []byte, status int) string {
	if env, err := decodeEnvelope(raw); err == nil {
		if msg := env.message(); msg != "" {
			return msg
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// HTTPProbe treats the network as online when a HEAD to URL succeeds.
type HTTPProbe struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func (p HTTPProbe) Online(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Health reports ErrNoConnection when the probe says the network is down.
// Without a probe the client is assumed reachable.
func (c *Client) Health(ctx context.Context) error {
	if c.probe != nil && !c.probe.Online(ctx) {
		return ErrNoConnection
	}
	return nil
}
