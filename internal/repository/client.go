package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	apierrors "parkdesk/internal/errors"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

// RetryPolicy controls how read requests against the parking service are
// retried. Writes are never retried.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	RetryableStatuses []int
}

// DefaultRetryPolicy retries HTTP 429 five times with 1s, 2s, 4s, 8s waits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       5,
		BaseDelay:         time.Second,
		RetryableStatuses: []int{http.StatusTooManyRequests},
	}
}

func (p RetryPolicy) retryable(code int) bool {
	return slices.Contains(p.RetryableStatuses, code)
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.BaseDelay * time.Duration(1<<min(p.MaxAttempts, 16))
	b.Reset()
	return b
}

// Client issues JSON requests against the parking service. Every repository
// shares one Client so rate limiting and retries apply uniformly.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   RetryPolicy
	logger  *zap.Logger
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
	Retry   RetryPolicy
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = DefaultRetryPolicy()
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		retry:   cfg.Retry,
		logger:  logger,
	}
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do performs a single request and returns the status and body. Transport
// failures are wrapped with ErrUnavailable.
func (c *Client) do(ctx context.Context, method, target string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s: %w", method, target, err)
		}
		body = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", apierrors.ErrUnavailable, method, target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s %s: %v", apierrors.ErrUnavailable, method, target, err)
	}
	return resp.StatusCode, respBody, nil
}

// getJSON reads path into out, retrying per the client's RetryPolicy. A
// non-OK final status is returned as *errors.HTTPError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.url(path, query)
	attempt := 0

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		status, body, err := c.do(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if status >= 200 && status < 300 {
			return body, nil
		}
		httpErr := apierrors.FromResponse(status, body)
		if c.retry.retryable(status) {
			return nil, httpErr
		}
		return nil, backoff.Permanent(httpErr)
	},
		backoff.WithBackOff(c.retry.backOff()),
		backoff.WithMaxTries(uint(c.retry.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("Retrying parking service read",
				zap.String("url", target),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return err
	}
	return decode(http.MethodGet, target, body, out)
}

// sendJSON issues a single write. Writes are not retried.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	target := c.url(path, nil)
	status, body, err := c.do(ctx, method, target, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return apierrors.FromResponse(status, body)
	}
	return decode(method, target, body, out)
}

func decode(method, target string, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", apierrors.ErrUnavailable, method, target, err)
	}
	return nil
}
