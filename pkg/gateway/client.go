// Package gateway provides the core HTTP client for the EVE Frontier world
// API gateway with bounded retry, caching, and error handling.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frontier-tools/solarmap/pkg/cache"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for gateway client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_requests_total",
		Help: "Total gateway requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frontier_request_duration_seconds",
		Help:    "Gateway request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_errors_total",
		Help: "Total gateway errors by class",
	}, []string{"class"})
)

// Client is the world API gateway client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the gateway base URL, e.g.
	// "https://blockchain-gateway-stillness.live.tech.evefrontier.com".
	BaseURL string `validate:"required,url"`

	// UserAgent identifies this tool to the gateway.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string `validate:"required"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `validate:"gte=0"`

	// Retry is the bounded retry policy applied to retriable failures.
	Retry RetryPolicy

	// Redis enables the response cache when set. The client works without
	// it; a one-shot run does not need Redis.
	Redis *redis.Client `validate:"-"`
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryPolicy(),
	}
}

// New creates a new gateway client.
func New(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("gateway config validation: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	logger := log.With().Str("component", "gateway-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cacheManager,
		config: cfg,
		logger: logger,
	}, nil
}

// Get performs a GET request against a gateway endpoint and returns the
// response body. Retriable failures (5xx, 429, network) are retried with
// exponential backoff per the configured policy; 4xx failures are returned
// immediately. The returned error wraps ErrRetryExhausted once the policy
// is spent.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Check cache
	var cachedEntry *cache.Entry
	cacheKey := cache.Key{
		Endpoint:    endpoint,
		QueryParams: query,
	}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		cachedEntry = entry
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", query.Encode()).
		Msg("Executing gateway request")

	var body []byte
	var lastClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := c.newRequest(ctx, endpoint, query, cachedEntry)
		if err != nil {
			return err
		}

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			lastClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(lastClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}
		defer resp.Body.Close()

		// 304 Not Modified: serve the cached body
		if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
			c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
			requestsTotal.WithLabelValues(endpoint, "304").Inc()
			cache.NotModifiedResponses.Inc()
			body = cachedEntry.Data
			return nil
		}

		if resp.StatusCode >= 400 {
			lastClass = classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(lastClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(lastClass)).
				Msg("Gateway request error")

			return &GatewayError{
				StatusCode: resp.StatusCode,
				ErrorClass: lastClass,
				Message:    resp.Status,
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			lastClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(lastClass)).Inc()
			return fmt.Errorf("read response body: %w", err)
		}

		requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if c.cache != nil && resp.StatusCode == http.StatusOK {
			c.storeInCache(ctx, cacheKey, resp, data)
		}

		body = data
		return nil
	}, func(error) ErrorClass {
		return lastClass
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// newRequest builds a request with the standard headers, adding conditional
// headers when a cached entry is available.
func (c *Client) newRequest(ctx context.Context, endpoint string, query url.Values, cachedEntry *cache.Entry) (*http.Request, error) {
	reqURL := strings.TrimRight(c.config.BaseURL, "/") + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	if cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cachedEntry.ETag).
			Msg("Making conditional request")
	}

	return req, nil
}

// storeInCache converts a successful response into a cache entry. Cache
// failures are logged and ignored; the response is still served.
func (c *Client) storeInCache(ctx context.Context, key cache.Key, resp *http.Response, data []byte) {
	entry := cache.NewEntry(resp, data)
	if entry.TTL() <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("endpoint", key.Endpoint).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the cache manager, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
