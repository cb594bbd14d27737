package metadata_test

import (
	"testing"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/metadata"
)

var _ metadata.MetadataSink = metadata.NoopSink{}
var _ metadata.CrawlFinalizer = metadata.NoopSink{}
var _ metadata.MetadataSink = (*metadata.Recorder)(nil)
var _ metadata.CrawlFinalizer = (*metadata.Recorder)(nil)

func TestErrorCause_String(t *testing.T) {
	cases := map[metadata.ErrorCause]string{
		metadata.CauseUnknown:             "unknown",
		metadata.CauseNetworkFailure:      "network_failure",
		metadata.CausePolicyDisallow:      "policy_disallow",
		metadata.CauseContentInvalid:      "content_invalid",
		metadata.CauseDuplicate:           "duplicate",
		metadata.CauseStorageFailure:      "storage_failure",
		metadata.CauseInvariantViolation:  "invariant_violation",
	}
	for cause, want := range cases {
		if got := cause.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", cause, got, want)
		}
	}
}

func TestRecorder_DoesNotPanicOnAnyCall(t *testing.T) {
	r := metadata.NewRecorder("test-worker")

	r.RecordFetch(metadata.FetchEvent{
		FetchURL:   "https://example.com/a",
		HTTPStatus: 200,
		Duration:   10 * time.Millisecond,
	})
	r.RecordError(time.Now(), "pipeline", "fetch", metadata.CauseNetworkFailure, "connection reset", []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, "https://example.com/a"),
	})
	r.RecordArtifact(metadata.ArtifactNapSnapshot, "/tmp/crawl.nap", nil)
	r.RecordFinalCrawlStats(metadata.CrawlStats{TotalPages: 10, TotalDownloads: 8, TotalErrors: 2, Duration: time.Second})
}

func TestNewAttr(t *testing.T) {
	a := metadata.NewAttr(metadata.AttrHost, "example.com")
	if a.Key != metadata.AttrHost || a.Value != "example.com" {
		t.Errorf("NewAttr = %+v, want {Key:host Value:example.com}", a)
	}
}
