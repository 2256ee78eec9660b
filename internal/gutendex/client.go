// Package gutendex provides a client for the Gutendex Project Gutenberg metadata API.
package gutendex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/literalura/internal/cache"
	apperrors "github.com/lepinkainen/literalura/internal/errors"
	"github.com/lepinkainen/literalura/internal/ratelimit"
)

const (
	defaultBaseURL   = "https://gutendex.com"
	defaultUserAgent = "literalura/1.0 (+https://github.com/lepinkainen/literalura)"
	defaultTimeout   = 30 * time.Second
	maxErrorBody     = 512
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Gutendex API client.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	cache       *cache.CacheDB
}

// NewClient creates a new Gutendex API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the Gutendex API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithRateLimiter sets a rate limiter applied before every request.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithCache enables response caching in the given cache database.
func WithCache(c *cache.CacheDB) Option {
	return func(client *Client) {
		client.cache = c
	}
}

// SearchURL builds the /books/ search URL. Whitespace in title is sent as %20;
// an empty language omits the languages filter.
func (c *Client) SearchURL(title, language string) string {
	q := strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
	u := fmt.Sprintf("%s/books/?search=%s", c.baseURL, q)
	if language = strings.TrimSpace(language); language != "" {
		u += "&languages=" + url.QueryEscape(strings.ToLower(language))
	}
	return u
}

// Search fetches and parses one page of search results.
func (c *Client) Search(ctx context.Context, title, language string) (*SearchResponse, error) {
	endpoint := c.SearchURL(title, language)

	body, fromCache, err := cache.GetOrFetch(c.cache, cache.GutendexTable, endpoint, cache.StringCodec,
		func() (string, error) { return c.Fetch(ctx, endpoint) },
		func(body string) bool { return json.Valid([]byte(body)) },
	)
	if err != nil {
		return nil, err
	}

	slog.Debug("Gutendex search", "url", endpoint, "cached", fromCache)
	return Parse(body)
}

// Fetch issues a single GET to endpoint and returns the body as text.
// There are no retries; any failure is returned to the caller.
func (c *Client) Fetch(ctx context.Context, endpoint string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewTransportError(endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", apperrors.NewRateLimitErrorWithRetry("gutendex rate limit exceeded", parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", apperrors.NewStatusError(endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewTransportError(endpoint, err)
	}
	return string(body), nil
}

// Parse decodes a /books/ response body.
func Parse(text string) (*SearchResponse, error) {
	var res SearchResponse
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, apperrors.NewPayloadError("gutendex search response", err)
	}
	return &res, nil
}

func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
