// Package httpclient is the single gateway for outbound HTTP to external
// data providers. It layers response caching, per-host rate limiting, and
// retry with backoff over a resty client.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config configures the HTTP client.
type Config struct {
	// UserAgent is sent on every request unless overridden per call.
	UserAgent string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RetryCount is how many times retryable statuses are retried.
	RetryCount int

	// RetryBackoff is the base wait before the first retry; subsequent
	// waits grow exponentially with jitter.
	RetryBackoff time.Duration

	// CacheTTL is the default cache lifetime for responses. Zero disables
	// caching unless a call overrides it.
	CacheTTL time.Duration

	// MinInterval is the minimum spacing between requests to one host.
	MinInterval time.Duration
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Success reports whether the status code is below 400.
func (r *Response) Success() bool { return r.StatusCode < 400 }

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", r.URL, err)
	}
	return nil
}

// Options are per-call overrides.
type Options struct {
	Params   map[string]string
	Headers  map[string]string
	FormData map[string]string

	// CacheTTL overrides the client default when non-nil. A zero value
	// disables caching for the call.
	CacheTTL *time.Duration
}

// Client performs cached, rate-limited, retried outbound requests.
// Safe for concurrent use.
type Client struct {
	rest       *resty.Client
	cache      *ristretto.Cache
	defaultTTL time.Duration

	minInterval time.Duration
	mu          sync.Mutex
	hosts       map[string]*rate.Limiter

	log zerolog.Logger
}

// New creates a Client. It panics only on a misconfigured cache, which is
// a programming error.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff == 0 {
		backoff = 400 * time.Millisecond
	}

	rest := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(backoff).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && retryableStatus(r.StatusCode())
		})
	if cfg.UserAgent != "" {
		rest.SetHeader("User-Agent", cfg.UserAgent)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 16,
		MaxCost:     64 << 20, // 64 MiB of cached bodies
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("httpclient: cache init: %v", err))
	}

	return &Client{
		rest:        rest,
		cache:       cache,
		defaultTTL:  cfg.CacheTTL,
		minInterval: cfg.MinInterval,
		hosts:       make(map[string]*rate.Limiter),
		log:         log.With().Str("component", "httpclient").Logger(),
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, opts)
}

// Post performs a POST request. Form data from opts is sent as the body.
func (c *Client) Post(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, opts)
}

func (c *Client) do(ctx context.Context, method, rawURL string, opts *Options) (*Response, error) {
	if opts == nil {
		opts = &Options{}
	}
	ttl := c.defaultTTL
	if opts.CacheTTL != nil {
		ttl = *opts.CacheTTL
	}

	key := cacheKey(method, rawURL, opts)
	if ttl > 0 {
		if hit, ok := c.cache.Get(key); ok {
			return hit.(*Response), nil
		}
	}

	if err := c.waitForHost(ctx, rawURL); err != nil {
		return nil, err
	}

	req := c.rest.R().SetContext(ctx)
	if len(opts.Params) > 0 {
		req.SetQueryParams(opts.Params)
	}
	if len(opts.Headers) > 0 {
		req.SetHeaders(opts.Headers)
	}
	if method == http.MethodPost && len(opts.FormData) > 0 {
		req.SetFormData(opts.FormData)
	}

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}
	out := &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		URL:        finalURL,
	}

	c.log.Debug().Str("method", method).Str("url", rawURL).Int("status", out.StatusCode).Msg("request")

	if ttl > 0 {
		c.cache.SetWithTTL(key, out, int64(len(out.Body))+1, ttl)
		c.cache.Wait()
	}
	return out, nil
}

// waitForHost blocks until the per-host minimum interval has elapsed.
func (c *Client) waitForHost(ctx context.Context, rawURL string) error {
	if c.minInterval <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %s: %w", rawURL, err)
	}

	c.mu.Lock()
	limiter, ok := c.hosts[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.minInterval), 1)
		c.hosts[u.Host] = limiter
	}
	c.mu.Unlock()

	return limiter.Wait(ctx)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// cacheKey builds the (method, url, sorted-params) key. Form data is
// included for POST so distinct payloads never collide.
func cacheKey(method, rawURL string, opts *Options) string {
	pairs := make([]string, 0, len(opts.Params)+len(opts.FormData))
	for k, v := range opts.Params {
		pairs = append(pairs, k+"="+v)
	}
	for k, v := range opts.FormData {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.ToUpper(method) + "|" + rawURL + "|" + strings.Join(pairs, "&")
}
