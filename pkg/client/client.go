// Package client provides the PokeAPI HTTP client with error classification,
// per-request timeouts, metrics and an optional response cache.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// numericSegment collapses resource ids so detail requests share one metric series.
var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// Client is the PokeAPI HTTP client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// RequestTimeout bounds each GetJSON call, body read included
	RequestTimeout time.Duration

	// MaxIdleConnsPerHost sizes the shared connection pool for the fan-out
	MaxIdleConnsPerHost int

	// Cache is optional; nil disables response caching
	Cache *cache.Manager
}

// DefaultConfig returns a default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:           userAgent,
		RequestTimeout:      10 * time.Second,
		MaxIdleConnsPerHost: 32,
	}
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request_timeout must be > 0 (got %s)", cfg.RequestTimeout)
	}

	if cfg.MaxIdleConnsPerHost < 0 {
		return nil, fmt.Errorf("max_idle_conns_per_host must be >= 0 (got %d)", cfg.MaxIdleConnsPerHost)
	}

	logger := logging.NewLogger("http-client")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
		},
		cache:  cfg.Cache,
		config: cfg,
		logger: logger,
	}, nil
}

// Do performs an HTTP request with caching and error classification.
// A nil error means a 2xx response (possibly served from cache); the caller closes the body.
// Any other outcome is returned as an *APIError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	target := req.URL.String()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check Cache
	var (
		cacheKey    cache.CacheKey
		cachedEntry *cache.CacheEntry
	)
	if c.cache != nil {
		cacheKey = cache.KeyFromURL(req.URL)

		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			cachedEntry = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", target).Msg("Cache get error")
		}

		if cachedEntry != nil && !cachedEntry.IsExpired() {
			c.logger.Debug().Str("url", target).Dur("ttl", cachedEntry.TTL()).Msg("Cache hit")
			requestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
			return cache.EntryToResponse(cachedEntry), nil
		}

		// Step 2: Revalidate a stale entry
		if cache.ShouldMakeConditionalRequest(cachedEntry) {
			cache.AddConditionalHeaders(req, cachedEntry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("url", target).
				Str("etag", cachedEntry.ETag).
				Msg("Making conditional request")
		}
	}

	// Step 3: Set headers
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	// Step 4: Execute HTTP Request
	c.logger.Debug().
		Str("url", target).
		Str("method", req.Method).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Debug().Err(err).Str("url", target).Msg("HTTP request failed")
		return nil, &APIError{
			URL:        target,
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	// Step 5: Handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		requestsTotal.WithLabelValues(endpoint, "304").Inc()
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("url", target).Msg("304 Not Modified - using cache")

		// The 304 carries the new freshness headers
		newExpires := time.Now().Add(c.cache.DefaultTTL())
		if refreshed, err := cache.ResponseToEntry(resp, c.cache.DefaultTTL()); err == nil {
			newExpires = refreshed.Expires
		}
		resp.Body.Close()
		if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
		}

		return cache.EntryToResponse(cachedEntry), nil
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	// Step 6: Handle HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := c.classifyError(resp, nil)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		resp.Body.Close()

		c.logger.Debug().
			Str("url", target).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Request error")

		return nil, &APIError{
			URL:        target,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	// Step 7: Update Cache on success
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp, c.cache.DefaultTTL())
		if err != nil {
			// The body was consumed while building the entry
			resp.Body.Close()
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return nil, &APIError{
				URL:        target,
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("url", target).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// classifyError categorizes a failure for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp == nil:
		return ""
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return ""
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// Get performs a GET request to an absolute URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON fetches url and decodes the JSON body into v.
// The whole call, body read included, is bounded by the configured request timeout.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &APIError{
			URL:        url,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return NewDecodeError(url, "malformed JSON", err)
	}

	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// endpointLabel turns /api/v2/pokemon/25/ into /api/v2/pokemon/{id}/.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/{id}$1")
}
