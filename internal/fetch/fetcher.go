// Package fetch implements the HTTP fetch primitive: one GET per call,
// wrapped with a [1,2,4,8,16]s retry schedule the worker pipeline's
// FETCH stage applies when --use_cache is on. Retries and backoff run
// through pkg/retry rather than a bespoke retry loop.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
	"github.com/nurlcrawl/nurlcrawl/pkg/retry"
	"github.com/nurlcrawl/nurlcrawl/pkg/timeutil"
)

// Fetcher performs a single HTTP fetch.
type Fetcher interface {
	Fetch(ctx context.Context, param Param) (Response, failure.ClassifiedError)
}

// HTTPFetcher is the live net/http-backed Fetcher. Redirects are
// followed by the underlying client; the final URL is read back off the
// response so the pipeline's PRE-FILTER stage can detect that a
// redirect occurred.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a default
// with a 30s timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, param Param) (Response, failure.ClassifiedError) {
	u := param.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, &Error{Message: err.Error(), Retryable: false, Cause: ErrCauseNetworkFailure}
	}
	req.Header.Set("User-Agent", param.UserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, &Error{Message: err.Error(), Retryable: true, Cause: ErrCauseNetworkFailure}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &Error{Message: err.Error(), Retryable: true, Cause: ErrCauseReadBodyFailed}
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return Response{
		url:        finalURL,
		redirected: finalURL.String() != u.String(),
		status:     resp.StatusCode,
		body:       body,
		headers:    headers,
		fetchedAt:  time.Now(),
	}, nil
}

// retryBackoff is a 1-second initial delay doubling on every retry,
// capped at 16s, for up to 5 retries after the first attempt:
// [1, 2, 4, 8, 16]s.
var retryBackoff = timeutil.NewBackoffParam(1*time.Second, 2.0, 16*time.Second)

const retrySchedule = 5

// FetchWithRetry runs fetcher.Fetch, retrying on transient HTTP 500-511
// responses or network failures using the [1,2,4,8,16]s backoff
// schedule when useCache is true. With useCache false, no retries are
// attempted regardless of outcome.
func FetchWithRetry(ctx context.Context, fetcher Fetcher, param Param, randomSeed int64) (Response, failure.ClassifiedError) {
	maxAttempts := 1
	if param.UseCache() {
		maxAttempts = retrySchedule + 1
	}

	retryParam := retry.NewRetryParam(time.Second, 0, randomSeed, maxAttempts, retryBackoff)

	result := retry.Retry(retryParam, func() (Response, failure.ClassifiedError) {
		resp, cerr := fetcher.Fetch(ctx, param)
		if cerr != nil {
			return resp, cerr
		}
		if resp.IsServerError() {
			return resp, &Error{
				Message:   fmt.Sprintf("server error %d", resp.Status()),
				Retryable: true,
				Cause:     ErrCauseNetworkFailure,
			}
		}
		return resp, nil
	})

	return result.Value(), result.Err()
}
