// Package sources fetches raw items from upstream feeds and APIs and
// maps them into the common news item schema.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/medwire/newscore/internal/domain"
)

// HTTP client defaults, shared across all adapters.
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	maxResponseBytes           = 10 << 20 // 10 MiB

	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
	limiterBurst               = 1
)

// Client is the shared HTTP fetch client. Each source gets its own rate
// limiter and circuit breaker, so one misbehaving upstream cannot starve
// or trip the others.
type Client struct {
	http      *http.Client
	userAgent string
	rps       float64

	mu       sync.Mutex
	limiters map[domain.Source]*rate.Limiter
	breakers map[domain.Source]*gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a fetch client. rps bounds the per-source request
// rate; timeout bounds each request.
func NewClient(timeout time.Duration, rps float64, userAgent string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
		rps:       rps,
		limiters:  make(map[domain.Source]*rate.Limiter),
		breakers:  make(map[domain.Source]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// Get fetches url on behalf of source, honoring the source's rate limit
// and circuit breaker. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, source domain.Source, url string) ([]byte, error) {
	if err := c.limiter(source).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", source, err)
	}

	return c.breaker(source).Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", source, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", source, err)
		}
		return body, nil
	})
}

func (c *Client) limiter(source domain.Source) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rps), limiterBurst)
		c.limiters[source] = limiter
	}
	return limiter
}

func (c *Client) breaker(source domain.Source) *gobreaker.CircuitBreaker[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	breaker, ok := c.breakers[source]
	if !ok {
		breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    string(source),
			Timeout: breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerConsecutiveFailures
			},
		})
		c.breakers[source] = breaker
	}
	return breaker
}
