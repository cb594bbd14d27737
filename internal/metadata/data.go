package metadata

import (
	"time"
)

// FetchEvent is one recorded HTTP fetch: a completed attempt against a
// single URL, successful or not, with whatever retries it took.
type FetchEvent struct {
	FetchURL    string
	HTTPStatus  int
	Duration    time.Duration
	ContentType string
	RetryCount  int
	CrawlDepth  int
}

// CrawlStats is a terminal, derived summary of a completed crawl.
//
//   - Contains only aggregate counts and durations
//   - Is computed by the crawler after all workers join
//   - Is recorded exactly once, via CrawlFinalizer
//   - Must not influence scheduling, retries, or crawl termination
//   - Must be constructed without reading metadata
type CrawlStats struct {
	TotalPages     int
	TotalDownloads int
	TotalErrors    int
	Duration       time.Duration
}

// ArtifactKind classifies what RecordArtifact just persisted.
type ArtifactKind string

const (
	ArtifactNapSnapshot   ArtifactKind = "nap_snapshot"
	ArtifactRobotsCache   ArtifactKind = "robots_cache"
	ArtifactCrawlReport   ArtifactKind = "crawl_report"
)

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It must never be used to derive retry, continuation, or abort decisions.
  - Any use of metadata.ErrorCause outside logging, metrics, or reporting is a design violation.
  - ErrorCause MUST NOT influence control flow.
  - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
  - ErrorCause values MUST have stable, package-agnostic semantics.
  - Pipeline packages MAY map their local errors to ErrorCause,
    but MUST NOT invent new meanings.

Non-goals:
  - ErrorCause does not encode severity.
  - ErrorCause does not imply retryability.
  - ErrorCause does not imply crawl termination.
  - ErrorCause does not imply correctness of downstream behavior.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts, DNS resolution failures, connection resets
  - robots.txt fetch timeout

# CausePolicyDisallow

Meaning:
  - Crawling was disallowed by an explicit policy or rule.

Examples:
  - robots.txt disallow
  - HTTP 403/401 interpreted as access denial
  - politeness crawl-delay enforcement

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Non-HTML/non-XML responses where one was expected
  - Empty or unextractable document bodies
  - Low-information pages (LOWINFO_PRE / LOWINFO_POST)

# CauseDuplicate

Meaning:
  - A page was rejected as an exact or near-duplicate of one already seen.

Examples:
  - TOO_EXACT (same exhash as an already-downloaded page)
  - TOO_SIMILAR (simhash distance below the configured threshold)

# CauseStorageFailure

Meaning:
  - Failure while persisting crawl artifacts.

Examples:
  - Disk full, write permission errors, filesystem I/O failures
  - Nap snapshot corruption on load

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.

Examples:
  - Impossible crawl depth
  - Internal consistency checks failing
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseDuplicate
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseDuplicate:
		return "duplicate"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Attribute is a single structured key/value pair attached to a log
// record.
type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{Key: key, Value: val}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrStage      AttributeKey = "stage"
	AttrFinish     AttributeKey = "finish"
)
