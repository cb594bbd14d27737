package robotscache

import (
	"fmt"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

type ErrorCause string

const (
	ErrCausePreFetchFailure  ErrorCause = "failed before making fetch"
	ErrCauseHTTPFetchFailure ErrorCause = "failed to fetch"
	ErrCauseHTTPServerError  ErrorCause = "http server error"
	ErrCauseParseError       ErrorCause = "failed to parse robots.txt"
)

type Error struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *Error) Error() string {
	return fmt.Sprintf("robots cache error: %s: %s", e.Cause, e.Message)
}

func (e *Error) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
