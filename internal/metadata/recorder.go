// Package metadata is the crawl's observability sink: structured,
// append-only records of fetches, errors, and persisted artifacts, plus
// a once-only final-stats summary: Recorder, the canonical ErrorCause
// table, and Attribute/AttributeKey, plus the MetadataSink/
// CrawlFinalizer interfaces every worker and the crawler orchestrator
// record against.
//
// Metadata Collected
//   - Fetch timestamps, HTTP status codes, content hashes, crawl depth
//
// Logging goals: debuggable crawl behavior, post-run auditability,
// failure diagnostics. Structured logging is preferred; this sink must
// never influence scheduling, retries, or crawl termination.
package metadata

import (
	"log/slog"
	"os"
	"time"
)

// MetadataSink is the observational interface every pipeline stage logs
// through. Implementations must not return errors or panic: recording
// metadata is never allowed to affect crawl control flow.
type MetadataSink interface {
	RecordFetch(event FetchEvent)
	RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, details string, attrs []Attribute)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// CrawlFinalizer records the one-time terminal crawl summary. Kept as a
// separate interface from MetadataSink because it is called exactly
// once, by the crawler orchestrator, after every worker has joined.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(stats CrawlStats)
}

// NoopSink discards everything. Used by tests and by any caller that
// wants pipeline behavior without log output.
type NoopSink struct{}

func (NoopSink) RecordFetch(FetchEvent)                                                {}
func (NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NoopSink) RecordArtifact(ArtifactKind, string, []Attribute)                       {}
func (NoopSink) RecordFinalCrawlStats(CrawlStats)                                       {}

// Recorder is the production MetadataSink/CrawlFinalizer: structured
// logging via log/slog, tagged with the label it was created with. The
// crawl command creates one Recorder labelled "crawl" and shares it among
// all workers, so its log lines do not identify the worker.
type Recorder struct {
	logger *slog.Logger
	label  string
}

// NewRecorder creates a Recorder that writes JSON lines to stderr,
// tagged with label (e.g. "worker-3").
func NewRecorder(label string) *Recorder {
	handler := slog.NewJSONHandler(os.Stderr, nil)
	return &Recorder{logger: slog.New(handler), label: label}
}

func (r *Recorder) RecordFetch(event FetchEvent) {
	r.logger.Info("fetch",
		slog.String("worker", r.label),
		slog.String("url", event.FetchURL),
		slog.Int("http_status", event.HTTPStatus),
		slog.Duration("duration", event.Duration),
		slog.String("content_type", event.ContentType),
		slog.Int("retry_count", event.RetryCount),
		slog.Int("crawl_depth", event.CrawlDepth),
	)
}

func (r *Recorder) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, details string, attrs []Attribute) {
	args := []any{
		slog.String("worker", r.label),
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
	}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	r.logger.Error(details, args...)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	args := []any{
		slog.String("worker", r.label),
		slog.String("kind", string(kind)),
		slog.String("path", path),
	}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	r.logger.Info("artifact", args...)
}

func (r *Recorder) RecordFinalCrawlStats(stats CrawlStats) {
	r.logger.Info("crawl_complete",
		slog.String("worker", r.label),
		slog.Int("total_pages", stats.TotalPages),
		slog.Int("total_downloads", stats.TotalDownloads),
		slog.Int("total_errors", stats.TotalErrors),
		slog.Duration("duration", stats.Duration),
	)
}
