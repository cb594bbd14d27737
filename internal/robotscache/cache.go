// Package robotscache implements the per-domain robots.txt cache: one
// fetch and parse per host, exposing can-fetch decisions, the derived
// crawl-delay politeness mutex, and announced sitemap URLs. Parsing
// uses github.com/temoto/robotstxt instead of a hand-rolled matcher.
package robotscache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

const maxRobotsBodySize = 500 * 1024

// Cache is the per-domain robots.txt cache. It owns no Nap or Frontier
// knowledge: callers enqueue SitemapURLs themselves.
type Cache struct {
	gate       *politeness.Gate
	httpClient *http.Client
	userAgent  string
	timeDelay  time.Duration

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates a Cache. gate supplies the global politeness mutex that
// spaces robots.txt fetches, and the per-domain mutex registry that
// each Entry's PolMut is drawn from. timeDelay is the configured
// fallback delay used when robots.txt specifies no crawl-delay.
func New(gate *politeness.Gate, userAgent string, timeDelay time.Duration, httpClient *http.Client) *Cache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Cache{
		gate:       gate,
		httpClient: httpClient,
		userAgent:  userAgent,
		timeDelay:  timeDelay,
		entries:    make(map[string]*Entry),
	}
}

// GetDomainInfo returns the Entry for u's scheme://host, creating and
// caching it on first use: the robots.txt fetch happens under the
// global politeness gate, crawl-delay is derived (falling back to the
// configured time delay), and the new domain mutex is immediately
// locked and unlocked so the delay that began with the robots fetch is
// observed by the first real fetch too.
func (c *Cache) GetDomainInfo(ctx context.Context, u url.URL) (*Entry, failure.ClassifiedError) {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return entry, nil
	}
	c.mu.Unlock()

	entry, cerr := c.fetchEntry(ctx, u)
	if cerr != nil {
		return nil, cerr
	}

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[key] = entry
	c.mu.Unlock()

	entry.PolMut.Lock()
	entry.PolMut.Unlock()

	return entry, nil
}

func (c *Cache) fetchEntry(ctx context.Context, u url.URL) (*Entry, failure.ClassifiedError) {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	c.gate.Global().Lock()
	status, body, err := c.doFetch(ctx, robotsURL)
	c.gate.Global().Unlock()

	now := time.Now()
	entry := &Entry{
		Host:      u.Host,
		RobotsURL: robotsURL,
		FetchedAt: now,
	}

	switch {
	case err != nil:
		// network/raw-none: allow all, defensive.
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		entry.disallowAll = true
	case status >= 400 && status < 500:
		// 4xx (other than 401/403): allow all.
	case status >= 200 && status < 300:
		parsed, perr := robotstxt.FromStatusAndBytes(status, body)
		if perr == nil && parsed != nil {
			entry.robots = parsed
			entry.SitemapURLs = parsed.Sitemaps
		}
	default:
		// Unexpected status (3xx loop, 5xx, etc.): allow all, defensive.
	}

	delay := entry.CrawlDelay(c.userAgent)
	if delay <= 0 {
		delay = c.timeDelay
	}
	entry.PolMut = c.gate.Domain(u.Host, delay)

	return entry, nil
}

func (c *Cache) doFetch(ctx context.Context, robotsURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodySize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("read robots.txt body: %w", err)
	}
	if len(body) > maxRobotsBodySize {
		body = body[:maxRobotsBodySize]
	}

	return resp.StatusCode, body, nil
}
