// Package api talks to the prompt analysis service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/f3rmion/objectify/internal/bias"
	"github.com/f3rmion/objectify/internal/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:5001"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

// Selector names the request field that carries the analysis axis. A client
// always sends one shape.
type Selector string

const (
	SelectorDomain Selector = "domain" // {"prompt", "domain": general|political|science|medical}
	SelectorMode   Selector = "mode"   // {"prompt", "mode": nlp|ai}
)

// Modes accepted by a mode-selector backend.
var Modes = []string{"nlp", "ai"}

// ParseSelector validates a selector name.
func ParseSelector(s string) (Selector, error) {
	switch sel := Selector(strings.ToLower(strings.TrimSpace(s))); sel {
	case SelectorDomain, SelectorMode:
		return sel, nil
	case "":
		return SelectorDomain, nil
	default:
		return "", fmt.Errorf("unknown selector %q (want domain or mode)", s)
	}
}

// Axes returns the values valid for the selector, first one being the
// default.
func (s Selector) Axes() []string {
	if s == SelectorMode {
		return append([]string(nil), Modes...)
	}
	axes := make([]string, 0, len(bias.Domains))
	for _, d := range bias.Domains {
		axes = append(axes, string(d))
	}
	return axes
}

// ValidateAxis checks v against the selector's values.
func (s Selector) ValidateAxis(v string) error {
	for _, a := range s.Axes() {
		if a == v {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (want one of %s)", ErrInvalidAxis, s, v, strings.Join(s.Axes(), ", "))
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Selector   Selector
	Timeout    time.Duration
	CacheTTL   time.Duration // 0 disables response caching
	RateLimit  float64       // Requests per second, 0 disables limiting
	RateBurst  int
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client is an analysis service client.
type Client struct {
	baseURL    string
	selector   Selector
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Health is the /api/health payload.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type analyzeRequest struct {
	Prompt string `json:"prompt"`
	Domain string `json:"domain,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

type detectRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a client for the service at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", base)
	}

	sel := opts.Selector
	if sel == "" {
		sel = SelectorDomain
	}
	if _, err := ParseSelector(string(sel)); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    base,
		selector:   sel,
		httpClient: httpClient,
		cacheTTL:   opts.CacheTTL,
		logger:     logger.Named("api"),
	}

	if opts.CacheTTL > 0 {
		c.cache = cache.NewMemory(opts.CacheTTL, 2*opts.CacheTTL)
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Selector returns the request shape this client sends.
func (c *Client) Selector() Selector {
	return c.selector
}

// Analyze runs full analysis: detection, rewrite and alternatives. axis is a
// domain or a mode depending on the client's selector; empty means the
// selector's default.
func (c *Client) Analyze(ctx context.Context, prompt, axis string) (*bias.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if axis == "" {
		axis = c.selector.Axes()[0]
	}
	if err := c.selector.ValidateAxis(axis); err != nil {
		return nil, err
	}

	req := analyzeRequest{Prompt: prompt}
	if c.selector == SelectorMode {
		req.Mode = axis
	} else {
		req.Domain = axis
	}

	var result bias.Result
	key := cache.Key("analyze", string(c.selector), axis, prompt)
	if err := c.do(ctx, "analyze", http.MethodPost, "/api/analyze", req, &result, key); err != nil {
		return nil, err
	}
	return &result, nil
}

// Detect runs detection only.
func (c *Client) Detect(ctx context.Context, prompt string) (*bias.Detection, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	var det bias.Detection
	key := cache.Key("detect", prompt)
	if err := c.do(ctx, "detect", http.MethodPost, "/api/detect", detectRequest{Prompt: prompt}, &det, key); err != nil {
		return nil, err
	}
	return &det, nil
}

// Health checks the service. It is never cached.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, &h, ""); err != nil {
		return nil, err
	}
	return &h, nil
}

// do performs one request. An empty cacheKey disables caching for the call.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, cacheKey string) error {
	if c.cache != nil && cacheKey != "" {
		if data, ok := c.cache.Get(cacheKey); ok {
			if err := json.Unmarshal(data, out); err == nil {
				c.logger.Debug("cache hit", zap.String("op", op))
				return nil
			}
			c.cache.Delete(cacheKey)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("reading response failed", zap.Error(err))
		return &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorResponse
		_ = json.Unmarshal(respBody, &payload)
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unmarshaling response: %w", err),
		}
	}

	if c.cache != nil && cacheKey != "" {
		c.cache.Set(cacheKey, respBody, c.cacheTTL)
	}

	return nil
}

// IsCanceled reports whether err came from a cancelled context rather than a
// real failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
