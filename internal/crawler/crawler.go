// Package crawler implements the top-level orchestrator: it wires the
// Nap, robots cache, politeness gate, and Frontier, spawns the
// configured worker count as a concurrent pool, joins them, and closes
// the Nap.
package crawler

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/config"
	"github.com/nurlcrawl/nurlcrawl/internal/fetch"
	"github.com/nurlcrawl/nurlcrawl/internal/frontier"
	"github.com/nurlcrawl/nurlcrawl/internal/metadata"
	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/internal/pipeline"
	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
	"github.com/nurlcrawl/nurlcrawl/internal/robotscache"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

// Crawler owns the process-lifetime collaborators a crawl needs: the
// Nap, the Frontier (and the robots cache/politeness gate it wraps),
// and the metadata sink every worker logs through.
type Crawler struct {
	cfg       config.Config
	nap       *nap.Nap
	frontier  *frontier.Frontier
	gate      *politeness.Gate
	sink      metadata.MetadataSink
	finalizer metadata.CrawlFinalizer
}

// New wires a Crawler from cfg. If cfg.Restart() is set, any existing
// save file and its .robocache sidecar are removed first (best-effort —
// a missing file is not an error) before the Nap opens a fresh store.
func New(cfg config.Config, sink metadata.MetadataSink, finalizer metadata.CrawlFinalizer) (*Crawler, failure.ClassifiedError) {
	if cfg.Restart() {
		os.Remove(cfg.SaveFile())
		os.Remove(cfg.RobotsCacheFile())
	}

	n, cerr := nap.New(cfg.SaveFile())
	if cerr != nil {
		return nil, cerr
	}

	gate := politeness.NewGate(cfg.TimeDelay())
	httpClient := &http.Client{Timeout: 30 * time.Second}
	robots := robotscache.New(gate, cfg.UserAgent(), cfg.TimeDelay(), httpClient)
	fr := frontier.New(n, robots, cfg.Policy(), cfg.HybridH())

	c := &Crawler{
		cfg:       cfg,
		nap:       n,
		frontier:  fr,
		gate:      gate,
		sink:      sink,
		finalizer: finalizer,
	}
	c.enqueuePending()
	return c, nil
}

// enqueuePending materializes every configured seed URL in the Nap
// (creating a fresh NOT_DOWNLOADED record on first run, a no-op on
// resume), then walks the whole Nap and re-enqueues every record whose
// status is NOT_DOWNLOADED — not just the seeds. On a fresh run that's
// exactly the seed set; on a resumed run it also picks back up every
// previously-discovered child Nurl that was queued but never finished,
// so no pending URL is silently dropped across a restart. A record
// already DOWNLOADED is left alone, and an IN_USE record (left claimed
// by a crash) is repaired by Nap.load before this ever runs.
func (c *Crawler) enqueuePending() {
	for _, u := range c.cfg.SeedURLs() {
		c.nap.Get(u)
	}
	for _, record := range c.nap.Snapshot() {
		if record.Status == nurl.StatusNotDownloaded {
			c.frontier.AddNurl(record)
		}
	}
}

// Run spawns cfg.ThreadsCount() workers, joins them once the frontier is
// exhausted, and closes the Nap. It returns a non-nil error only if the
// final Nap save failed after retrying.
func (c *Crawler) Run(ctx context.Context) failure.ClassifiedError {
	start := time.Now()

	var wg sync.WaitGroup

	for i := 0; i < c.cfg.ThreadsCount(); i++ {
		wg.Add(1)
		worker := &pipeline.Worker{
			Label:    workerLabel(i),
			Frontier: c.frontier,
			Nap:      c.nap,
			Gate:     c.gate,
			Fetcher:  fetch.NewHTTPFetcher(nil),
			Sink:     c.sink,
			Cfg:      c.cfg,
		}
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()

	saved := c.nap.Close(3)

	c.finalizer.RecordFinalCrawlStats(c.deriveStats(time.Since(start)))

	if !saved {
		return &Error{Message: "final Nap save failed after retries", Cause: ErrCauseCloseFailure}
	}
	return nil
}

// deriveStats scans the Nap's final contents for the terminal summary,
// rather than tracking running counters per worker, so the numbers
// reflect exactly what was committed even if a worker panics mid-run.
func (c *Crawler) deriveStats(duration time.Duration) metadata.CrawlStats {
	records := c.nap.Snapshot()

	stats := metadata.CrawlStats{
		TotalPages: len(records),
		Duration:   duration,
	}
	for _, record := range records {
		if record.Status == nurl.StatusDownloaded {
			stats.TotalDownloads++
		}
		switch record.Finish {
		case nurl.FinishBad, nurl.FinishCacheError:
			stats.TotalErrors++
		}
	}
	return stats
}

func workerLabel(i int) string {
	return "worker-" + strconv.Itoa(i)
}
