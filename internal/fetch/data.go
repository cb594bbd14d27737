package fetch

import (
	"net/url"
	"time"
)

// cache-server status codes are reserved for the --use_cache proxy: a
// downstream cache server answers with one of these instead of the
// origin's real status when it cannot satisfy the request itself.
const (
	CacheServerStatusMin = 600
	CacheServerStatusMax = 606
)

// Param describes one fetch request.
type Param struct {
	url       url.URL
	userAgent string
	// useCache enables the retry schedule. HTTPFetcher always requests
	// the URL itself; no cache-server proxy is contacted.
	useCache bool
}

// NewParam creates a fetch Param.
func NewParam(u url.URL, userAgent string, useCache bool) Param {
	return Param{url: u, userAgent: userAgent, useCache: useCache}
}

func (p Param) URL() url.URL      { return p.url }
func (p Param) UserAgent() string { return p.userAgent }
func (p Param) UseCache() bool    { return p.useCache }

// Response is the fetch collaborator's output: the final URL after any
// server-side redirect, status, bytes, headers, and a redirect marker.
type Response struct {
	url        url.URL
	redirected bool
	status     int
	body       []byte
	headers    map[string]string
	fetchedAt  time.Time
}

func (r *Response) URL() url.URL               { return r.url }
func (r *Response) Redirected() bool           { return r.redirected }
func (r *Response) Status() int                { return r.status }
func (r *Response) Body() []byte               { return r.body }
func (r *Response) Headers() map[string]string { return r.headers }
func (r *Response) FetchedAt() time.Time       { return r.fetchedAt }
func (r *Response) ContentLength() int         { return len(r.body) }

// IsCacheServerStatus reports whether status falls in the reserved
// cache-server error range.
func (r *Response) IsCacheServerStatus() bool {
	return r.status >= CacheServerStatusMin && r.status <= CacheServerStatusMax
}

// IsServerError reports whether status is a transient HTTP 5xx in the
// 500-511 range retry applies to.
func (r *Response) IsServerError() bool {
	return r.status >= 500 && r.status <= 511
}

// NewResponseForTest builds a Response directly, for use by test code in
// other packages that need a fetch.Response without a live HTTP round trip.
func NewResponseForTest(u url.URL, status int, body []byte, headers map[string]string, redirected bool, fetchedAt time.Time) Response {
	return Response{
		url:        u,
		redirected: redirected,
		status:     status,
		body:       body,
		headers:    headers,
		fetchedAt:  fetchedAt,
	}
}
