// Package pipeline implements the worker pipeline's fixed per-Nurl
// stage sequence: SIFT, DOMAIN, FETCH, PRE-FILTER, TEXT, EXTRACT,
// TRANSFORM & ENQUEUE, COMMIT.
//
// Each worker loops: dequeue, process one item to completion, repeat
// until the queue reports empty. Exact/similarity dedup uses pkg/exhash
// and pkg/simhash; depth sifting and the redirect/dedup fail
// dispositions follow crawler2/workerpipe.py.
package pipeline

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/config"
	"github.com/nurlcrawl/nurlcrawl/internal/fetch"
	"github.com/nurlcrawl/nurlcrawl/internal/frontier"
	"github.com/nurlcrawl/nurlcrawl/internal/linkextract"
	"github.com/nurlcrawl/nurlcrawl/internal/metadata"
	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
	"github.com/nurlcrawl/nurlcrawl/internal/textstat"
	"github.com/nurlcrawl/nurlcrawl/pkg/exhash"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
	"github.com/nurlcrawl/nurlcrawl/pkg/simhash"
	"github.com/nurlcrawl/nurlcrawl/pkg/urlutil"
)

// Worker runs the stage sequence against a single Frontier/Nap pair
// until the frontier is exhausted. Multiple Workers share one Frontier,
// Nap, and Gate — all of which are already internally synchronized —
// and each holds its own Fetcher and label for independent logging.
type Worker struct {
	Label    string
	Frontier *frontier.Frontier
	Nap      *nap.Nap
	Gate     *politeness.Gate
	Fetcher  fetch.Fetcher
	Sink     metadata.MetadataSink
	Cfg      config.Config
}

// Run processes Nurls until GetTbdNurl reports the frontier exhausted,
// returning the count processed. ctx governs each individual fetch; it
// does not interrupt a Nurl already mid-stage.
func (w *Worker) Run(ctx context.Context) int {
	processed := 0
	for {
		n, ok := w.Frontier.GetTbdNurl()
		if !ok {
			return processed
		}
		w.process(ctx, n)
		processed++
	}
}

func (w *Worker) process(ctx context.Context, n nurl.Nurl) {
	if !w.sift(n) {
		return
	}

	u, err := url.Parse(n.URL)
	if err != nil {
		n.Finish = nurl.FinishBad
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return
	}

	entry, cerr := w.Frontier.GetDomainInfo(ctx, *u)
	if cerr != nil {
		w.recordClassifiedError(n, "robotscache", "get_domain_info", metadata.CausePolicyDisallow, cerr)
		n.Finish = nurl.FinishNotAllowed
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return
	}
	if !entry.CanFetch(w.Cfg.UserAgent(), requestPath(*u)) {
		n.Finish = nurl.FinishNotAllowed
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return
	}

	resp, ok := w.fetchStage(ctx, n, *u, entry.PolMut)
	if !ok {
		return
	}

	w.Sink.RecordFetch(metadata.FetchEvent{
		FetchURL:    u.String(),
		HTTPStatus:  resp.Status(),
		ContentType: resp.Headers()["Content-Type"],
		CrawlDepth:  n.AbsDepth,
	})

	result, ok := w.preFilterAndExtract(n, resp)
	if !ok {
		return
	}

	if !result.IsSitemap && !w.text(&n, result) {
		return
	}

	for _, raw := range result.Links {
		w.transformAndEnqueue(&n, raw)
	}

	n.Finish = nurl.FinishOK
	w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
}

// sift rejects n if it falls outside the configured depth thresholds,
// resetting it to NOT_DOWNLOADED without re-enqueuing — it stays in the
// Nap for a later run (a different traversal policy, or relaxed
// limits) to reconsider.
func (w *Worker) sift(n nurl.Nurl) bool {
	if n.AbsDepth <= w.Cfg.MaxAbsDepth() &&
		n.RelDepth <= w.Cfg.MaxRelDepth() &&
		n.MonoDepth <= w.Cfg.MaxMonoDepth() &&
		n.DupDepth <= w.Cfg.MaxDupDepth() {
		return true
	}
	n.Finish = nurl.FinishSifted
	w.Frontier.MarkNurlComplete(n, nurl.StatusNotDownloaded)
	return false
}

// domainLock is the subset of politeness.PoliteMutex the FETCH stage
// needs; narrowed to a local interface so tests can supply a stub.
type domainLock interface {
	Lock()
	Unlock()
}

// fetchStage downloads n under the global and per-domain politeness
// locks, in that order (global_polmut -> domain_polmut, per the
// configured lock ordering). On exhausted retries it reverts n to
// NOT_DOWNLOADED and re-enqueues it; on a non-retryable failure it
// commits n as BAD.
func (w *Worker) fetchStage(ctx context.Context, n nurl.Nurl, u url.URL, domain domainLock) (fetch.Response, bool) {
	w.Gate.Global().Lock()
	domain.Lock()
	resp, cerr := fetch.FetchWithRetry(ctx, w.Fetcher, fetch.NewParam(u, w.Cfg.UserAgent(), w.Cfg.UseCache()), w.Cfg.RandomSeed())
	domain.Unlock()
	w.Gate.Global().Unlock()

	if cerr == nil {
		return resp, true
	}

	w.recordClassifiedError(n, "fetch", "fetch_with_retry", metadata.CauseNetworkFailure, cerr)
	if cerr.Severity() == failure.SeverityRecoverable {
		w.Frontier.Requeue(n)
		return fetch.Response{}, false
	}

	n.Finish = nurl.FinishBad
	w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
	return fetch.Response{}, false
}

// preFilterAndExtract implements PRE-FILTER and EXTRACT together: both
// need a parsed document, so the body is parsed once and its links
// reused for TRANSFORM & ENQUEUE rather than re-parsing per stage.
func (w *Worker) preFilterAndExtract(n nurl.Nurl, resp fetch.Response) (linkextract.Result, bool) {
	status := resp.Status()

	switch {
	case status == 401 || status == 403 || status == 404:
		n.Finish = nurl.FinishBad
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	case resp.IsCacheServerStatus():
		n.Finish = nurl.FinishCacheError
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	}

	if resp.Redirected() {
		child := n
		child.URL = resp.URL().String()
		child.Hash = urlutil.Hash(resp.URL())
		child.Status = nurl.StatusNotDownloaded
		child.Finish = nurl.FinishNone
		n.Links = append(n.Links, child.Hash)
		w.Frontier.AddNurl(child)

		n.Finish = nurl.FinishRedirect
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	}

	if resp.ContentLength() < w.Cfg.MinContentLen() || resp.ContentLength() > w.Cfg.MaxContentLen() {
		n.Finish = nurl.FinishLowInfoPre
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	}

	n.ExHash = exhash.Hash(resp.Body())
	if _, isMaster := w.Nap.ClaimExact(n.ExHash, n.Hash); !isMaster {
		n.Finish = nurl.FinishTooExact
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	}

	var result linkextract.Result
	var cerr failure.ClassifiedError
	if linkextract.LooksLikeSitemap(resp.Headers()["Content-Type"]) {
		result, cerr = linkextract.ExtractSitemap(resp.Body())
	} else {
		result, cerr = linkextract.ExtractHTML(resp.URL(), resp.Body(), w.Cfg.Strict(), w.Cfg.AllowedSuffixes())
	}
	if cerr != nil {
		w.recordClassifiedError(n, "linkextract", "extract", metadata.CauseContentInvalid, cerr)
		n.Finish = nurl.FinishBad
		w.Frontier.MarkNurlComplete(n, nurl.StatusDownloaded)
		return linkextract.Result{}, false
	}

	return result, true
}

// text implements the TEXT stage: tokenize, reject on the three
// low-information floors, else compute and claim the similarity
// fingerprint and store the word counts on n.
func (w *Worker) text(n *nurl.Nurl, result linkextract.Result) bool {
	words := textstat.WordCounts(result.Text)
	stats := textstat.ComputeStats(words)

	if stats.IsLowInfo(w.Cfg.MinUniqueWords(), w.Cfg.MinMaxWordCount(), w.Cfg.MinWords()) {
		n.Finish = nurl.FinishLowInfoPost
		w.Frontier.MarkNurlComplete(*n, nurl.StatusDownloaded)
		return false
	}

	fp := simhash.Fingerprint(words)
	n.SimHash = fp
	if _, isMaster := w.Nap.ClaimSimilar(fp, w.Cfg.SimThreshold(), n.Hash); !isMaster {
		n.Finish = nurl.FinishTooSimilar
		w.Frontier.MarkNurlComplete(*n, nurl.StatusDownloaded)
		return false
	}

	n.Words = words
	return true
}

// transformAndEnqueue constructs a child Nurl for raw, computes its
// depths against parent, links it, and enqueues it. Invalid or
// unparsable URLs are silently dropped, matching is_valid's role as a
// crawl-eligibility filter rather than an error condition.
func (w *Worker) transformAndEnqueue(parent *nurl.Nurl, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	if !urlutil.IsValid(*u, w.Cfg.Strict(), w.Cfg.AllowedSuffixes()) {
		return
	}

	child := nurl.New(*u)
	child.SetParent(parent)
	parent.Links = append(parent.Links, child.Hash)
	w.Frontier.AddNurl(child)
}

func requestPath(u url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

func (w *Worker) recordClassifiedError(n nurl.Nurl, pkg, action string, cause metadata.ErrorCause, cerr failure.ClassifiedError) {
	w.Sink.RecordError(time.Now(), pkg, action, cause, cerr.Error(), []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, n.URL),
		metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(n.AbsDepth)),
	})
}
