package robotscache

import (
	"time"

	"github.com/temoto/robotstxt"

	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
)

// Entry is the per-domain robots record the cache creates once per host
// on first contact: {polmut, robots_parser, sitemap_urls}.
type Entry struct {
	Host string

	PolMut *politeness.PoliteMutex

	// robots holds the parsed ruleset. A nil value means "allow all"
	// (no robots.txt, a non-401/403 4xx status, or a network failure
	// handled defensively).
	robots *robotstxt.RobotsData
	// disallowAll is set on a 401/403 response, which per spec means
	// the whole host is off-limits rather than unrestricted.
	disallowAll bool

	RobotsURL   string
	SitemapURLs []string
	FetchedAt   time.Time
}

// CanFetch reports whether userAgent may fetch path under this domain's
// robots.txt rules.
func (e *Entry) CanFetch(userAgent, path string) bool {
	if e.disallowAll {
		return false
	}
	if e.robots == nil {
		return true
	}
	return e.robots.TestAgent(path, userAgent)
}

// CrawlDelay returns the crawl-delay robots.txt specifies for userAgent,
// or zero if none was specified.
func (e *Entry) CrawlDelay(userAgent string) time.Duration {
	if e.robots == nil {
		return 0
	}
	group := e.robots.FindGroup(userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}
