// Package datasource fetches news articles for sentiment analysis. It
// defines a common ArticleSource interface and implements concrete sources
// for the NewsAPI "everything" endpoint and for RSS/Atom feeds.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ArticleSource is implemented by every news provider.
type ArticleSource interface {
	// Name returns the human-readable name of this source.
	Name() string

	// FetchArticles returns up to limit articles matching query.
	// A limit of zero or less means the source default.
	FetchArticles(ctx context.Context, query string, limit int) ([]models.Article, error)
}

// --- Sentinel errors ---

// ErrMissingAPIKey is returned when a source that needs a key has none.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrNoSources is returned by MultiSource when it wraps no sources.
var ErrNoSources = errors.New("no article sources configured")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "newspulse/1.0 (+https://github.com/seenimoa/newspulse)"

// DefaultTimeout bounds every outgoing request unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 1024

// newHTTPClient returns a client with the given timeout, or DefaultTimeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doGet performs a GET request with the given URL and headers. On success the
// caller is responsible for closing the returned body. Responses with status
// 400 or above are returned as *ErrHTTP together with the truncated body.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// newLimiter returns a limiter allowing perSec requests per second with a
// burst of one. Zero or less disables limiting.
func newLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

// --- Simple in-memory cache ---

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with a per-entry TTL.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
}

// NewCache creates a cache with the given default TTL. A TTL of zero or
// less disables caching: Set becomes a no-op.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
	}
}

// Get retrieves a value. The second result is false if the key is missing or expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache[V]) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry[V])
	c.mu.Unlock()
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	n := 0
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cloneArticles returns a copy so cached slices are never shared with callers.
func cloneArticles(in []models.Article) []models.Article {
	if in == nil {
		return nil
	}
	out := make([]models.Article, len(in))
	copy(out, in)
	return out
}

// PublishedSince keeps articles published at or after since, in order.
// Articles without a publication time are kept. A zero since keeps everything.
func PublishedSince(articles []models.Article, since time.Time) []models.Article {
	if since.IsZero() {
		return articles
	}
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt.IsZero() || !a.PublishedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out
}
