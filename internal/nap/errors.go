package nap

import (
	"fmt"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseLoadFailure ErrorCause = "load failed"
	ErrCauseSaveFailure ErrorCause = "save failed"
	ErrCauseCorruptData ErrorCause = "corrupt snapshot data"
)

type Error struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
	Path      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nap error: %s (%s): %s", e.Cause, e.Path, e.Message)
}

func (e *Error) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
