// Package providers implements web search backends behind driven.SearchProvider.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client defaults
const (
	DefaultRequestDelay  = 500 * time.Millisecond
	DefaultMaxRetries    = 2
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxResponseBytes = 4 << 20
)

// Config holds options shared by all providers.
type Config struct {
	BaseURL       string        // Overrides the provider endpoint, used in tests
	HTTPClient    *http.Client  // Default has no timeout; callers bound ctx
	RequestDelay  time.Duration // Minimum gap between requests, default 0.5s, negative disables
	MaxRetries    int           // Retries on 429 and 5xx, default 2, negative disables
	RetryInterval time.Duration // First retry delay, default 0.5s
	UserAgent     string
	Logger        *slog.Logger
}

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the status is worth another attempt
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// client paces and retries HTTP calls for one provider
type client struct {
	http          *http.Client
	limiter       *rate.Limiter
	maxRetries    uint64
	retryInterval time.Duration
	userAgent     string
	logger        *slog.Logger
}

func newClient(cfg Config, component string) *client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	delay := cfg.RequestDelay
	if delay == 0 {
		delay = DefaultRequestDelay
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	retries := cfg.MaxRetries
	if retries == 0 {
		retries = DefaultMaxRetries
	}
	if retries < 0 {
		retries = 0
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &client{
		http:          httpClient,
		limiter:       rate.NewLimiter(limit, 1),
		maxRetries:    uint64(retries),
		retryInterval: interval,
		userAgent:     ua,
		logger:        logger.With("component", component),
	}
}

// do sends the request built by newReq and returns the response body.
// newReq is called once per attempt so request bodies can be replayed.
func (c *client) do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
			if !statusErr.retryable() {
				return nil, backoff.Permanent(statusErr)
			}
			c.logger.Debug("provider request will be retried", "status", resp.StatusCode, "attempt", attempt)
			return nil, statusErr
		}
		return body, nil
	}

	policy := backoff.NewExponentialBackOff(backoff.WithInitialInterval(c.retryInterval))
	body, err := backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}
		return nil, err
	}
	return body, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
