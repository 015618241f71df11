package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/dispatch"
	"github.com/jmerrifield20/zendesk/pkg/uri"
)

const maxResponseBytes = 4 << 20

var (
	// ErrNotFound matches an *APIError with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches an *APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is returned for any response with status >= 300.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	RequestID  string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: server error %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Is lets callers match ErrNotFound and ErrUnauthorized with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// Client talks to one Zendesk account.
type Client struct {
	cfg        *config.Config
	base       *uri.URI
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	retryInterval time.Duration
	ops           *dispatch.Table
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client. OAuth access tokens are still
// applied on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger, overriding the "logger" option.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithRetryInterval sets the initial retry backoff interval (default 500ms).
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("retry interval must be positive, got %s", d)
		}
		c.retryInterval = d
		return nil
	}
}

// New creates a Client from an options set. Option keys are documented on
// config.Config; construction fails with config.ErrInvalidConfig when they
// do not describe a usable account.
//
//	c, err := client.New(config.Options{
//	    "subdomain": "acme",
//	    "username":  "agent@acme.com",
//	    "token":     os.Getenv("ZENDESK_TOKEN"),
//	    "retry":     true,
//	})
func New(opts config.Options, extra ...Option) (*Client, error) {
	cfg, err := config.Build(opts)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:           cfg,
		base:          cfg.Base(),
		httpClient:    cfg.HTTPClient,
		logger:        cfg.Logger,
		retryInterval: 500 * time.Millisecond,
	}
	for _, o := range extra {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.AccessToken != "" {
		c.httpClient = oauthClient(c.httpClient, cfg.AccessToken)
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	c.ops = c.operations()
	clientsCreated.Inc()
	c.logger.Debug("zendesk client created",
		zap.String("url", c.base.String()),
		zap.Bool("retry", cfg.Retry),
	)
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(opts config.Options, extra ...Option) *Client {
	c, err := New(opts, extra...)
	if err != nil {
		panic(err)
	}
	return c
}

// oauthClient wraps base so every request carries the access token as a
// Bearer credential.
func oauthClient(base *http.Client, accessToken string) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	hc.Timeout = base.Timeout
	return hc
}

// URL returns the API base URL.
func (c *Client) URL() string { return c.base.String() }

// Do executes one API request and returns the raw response body. It
// implements api.Doer. When the "retry" option is set, 429 and 503 responses
// and transport errors are retried with exponential backoff, honoring
// Retry-After.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = b
	}

	target, err := c.base.Resolve(path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	if !c.cfg.Retry {
		return c.do(ctx, method, target, payload)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryInterval
	hinted := &retryAfterBackOff{BackOff: backoff.WithMaxRetries(exp, uint64(c.cfg.MaxRetries))}

	var out []byte
	err = backoff.RetryNotify(func() error {
		b, err := c.do(ctx, method, target, payload)
		if err == nil {
			out = b
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if !apiErr.Retryable() {
				return backoff.Permanent(err)
			}
			hinted.hint = apiErr.RetryAfter
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(hinted, ctx), func(err error, wait time.Duration) {
		retriesTotal.Inc()
		c.logger.Warn("retrying zendesk request",
			zap.String("method", method),
			zap.String("url", target),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// do performs a single HTTP round trip.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user, pass, ok := c.cfg.BasicAuth(); ok && c.cfg.AccessToken == "" {
		req.SetBasicAuth(user, pass)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	c.logger.Debug("zendesk request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, &APIError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RequestID:  requestID,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// retryAfterBackOff stretches the next wait to a server-supplied Retry-After.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.hint > d {
		d = b.hint
	}
	b.hint = 0
	return d
}
