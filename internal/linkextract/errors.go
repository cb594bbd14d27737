package linkextract

import (
	"fmt"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseNotHTML   ErrorCause = "not html"
	ErrCauseNotXML    ErrorCause = "not xml"
	ErrCauseNoContent ErrorCause = "no content"
)

// Error implements failure.ClassifiedError. Extraction failures are
// never retryable: a malformed document won't parse differently on a
// second attempt.
type Error struct {
	Message string
	Cause   ErrorCause
}

func (e *Error) Error() string {
	return fmt.Sprintf("linkextract: %s: %s", e.Cause, e.Message)
}

func (e *Error) Severity() failure.Severity {
	return failure.SeverityFatal
}
