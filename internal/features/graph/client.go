package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Doer is the part of *http.Client the Graph client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues GET requests against the Graph API with retry, optional
// client side rate limiting and an optional circuit breaker.
type Client struct {
	baseURL string
	version string
	token   string

	httpc   Doer
	policy  RetryPolicy
	sleep   SleepFunc
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option { return func(c *Client) { c.httpc = d } }

func WithRetryPolicy(p RetryPolicy) Option { return func(c *Client) { c.policy = p } }

func WithSleeper(s SleepFunc) Option { return func(c *Client) { c.sleep = s } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithRateLimit caps outgoing requests per second; 0 leaves them unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithCircuitBreaker opens after repeated transient failures so a struggling
// upstream is not hammered by every form in a run.
func WithCircuitBreaker(name string) Option {
	return func(c *Client) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 10
			},
			// Only upstream health problems count against the breaker
			IsSuccessful: func(err error) bool {
				return err == nil || !IsRetryable(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				c.log.Warn("graph api circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
}

func NewClient(baseURL, version, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: strings.Trim(version, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		policy:  DefaultRetryPolicy(),
		sleep:   SleepContext,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds the client the sync services use.
func NewClientFromConfig(cfg *config.Config, log *zap.Logger) *Client {
	policy := DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Meta.MaxAttempts

	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Meta.HTTPTimeout}),
		WithRetryPolicy(policy),
		WithLogger(log.Named("graph")),
		WithRateLimit(cfg.Meta.RatePerSecond),
	}
	if cfg.Meta.BreakerEnabled {
		opts = append(opts, WithCircuitBreaker("meta-graph-api"))
	}
	return NewClient(cfg.Meta.GraphBaseURL, cfg.Meta.GraphVersion, cfg.Meta.AccessToken, opts...)
}

type tokenKey struct{}

// ContextWithToken makes requests issued with ctx use token instead of the
// client's configured one.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		return t
	}
	return c.token
}

// GetJSON performs Get and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, pathOrURL string, query url.Values, out any) error {
	body, err := c.Get(ctx, pathOrURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

// Get fetches pathOrURL, retrying transient failures. A path is resolved
// against the versioned base URL; a full URL (a paging cursor) is used as is.
func (c *Client) Get(ctx context.Context, pathOrURL string, query url.Values) ([]byte, error) {
	reqURL, err := c.resolve(ctx, pathOrURL, query)
	if err != nil {
		return nil, err
	}

	maxAttempts := c.policy.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.attempt(ctx, reqURL)
		if err == nil {
			metrics.GraphRequests.WithLabelValues("success").Inc()
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !c.policy.shouldRetry(err) {
			metrics.GraphRequests.WithLabelValues("fatal").Inc()
			return nil, err
		}
		metrics.GraphRequests.WithLabelValues("retryable").Inc()
		if attempt == maxAttempts {
			break
		}

		delay := c.policy.Delay(attempt, RetryAfterOf(err))
		c.log.Warn("graph api request failed, retrying",
			zap.String("path", redact(pathOrURL)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		metrics.GraphRetries.Inc()

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.breaker == nil {
		return c.do(ctx, reqURL)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, reqURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.GraphRequests.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("graph api unavailable: %w", err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{Message: err.Error(), Transient: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Message: "read body: " + err.Error(), Transient: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError(resp.StatusCode, resp.Header, body)
	}
	return body, nil
}

func (c *Client) resolve(ctx context.Context, pathOrURL string, query url.Values) (string, error) {
	raw := pathOrURL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = c.baseURL + "/" + c.version + "/" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid graph url %q: %w", redact(pathOrURL), err)
	}

	q := u.Query()
	for k, vs := range query {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("access_token", c.tokenFor(ctx))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact strips the query string, which carries the access token on paging URLs.
func redact(pathOrURL string) string {
	if i := strings.IndexByte(pathOrURL, '?'); i >= 0 {
		return pathOrURL[:i]
	}
	return pathOrURL
}
