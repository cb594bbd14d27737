package fetch

import (
	"fmt"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseTimeout        ErrorCause = "timeout"
	ErrCauseNetworkFailure ErrorCause = "network issues"
	ErrCauseReadBodyFailed ErrorCause = "failed to read response body"
)

type Error struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *Error) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable satisfies pkg/retry's retryability probe.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}
