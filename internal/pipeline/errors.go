// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "fmt"

// FailedMessage is the user-facing message of a failed job. Internal error
// detail stays in State.Reason and State.Err.
const FailedMessage = "Failed to generate paper. Please try again."

// Failure reasons.
const (
	ReasonOutline   = "outline generation failed"
	ReasonParse     = "outline response could not be parsed"
	ReasonCancelled = "cancelled"
)

func contentReason(i int, title string) string {
	return fmt.Sprintf("content generation failed for section %d %q", i+1, title)
}

// PreconditionError rejects a request before any job is created.
type PreconditionError struct {
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// failure is a fatal outcome of a phase step.
type failure struct {
	reason string
	err    error
}
