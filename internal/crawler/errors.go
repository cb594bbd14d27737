package crawler

import (
	"fmt"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseCloseFailure ErrorCause = "final nap save failed"
)

type Error struct {
	Message string
	Cause   ErrorCause
}

func (e *Error) Error() string {
	return fmt.Sprintf("crawler error: %s: %s", e.Cause, e.Message)
}

func (e *Error) Severity() failure.Severity {
	return failure.SeverityFatal
}
