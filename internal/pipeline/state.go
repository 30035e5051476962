// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"time"

	"github.com/pdiddy/paperforge/pkg/types"
)

// Kind is the position of a job in the pipeline state machine. Jobs move
// strictly forward through the kinds; Completed and Failed are terminal.
type Kind int

const (
	Idle Kind = iota
	Outlining
	ResearchingSection
	VisualizingSection
	Completed
	Failed
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Outlining:
		return "outlining"
	case ResearchingSection:
		return "researching"
	case VisualizingSection:
		return "visualizing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Terminal reports whether no further transitions can follow k.
func (k Kind) Terminal() bool {
	return k == Completed || k == Failed
}

// State is the live state of a job.
type State struct {
	Kind Kind

	// Section is the outline index being worked on while researching or
	// visualizing, and -1 otherwise.
	Section int

	// Document is set only when Kind is Completed.
	Document *types.Document

	// Reason is a human-readable cause, set only when Kind is Failed.
	Reason string

	// Err is the underlying cause, set only when Kind is Failed.
	Err error
}

func (s State) String() string {
	switch s.Kind {
	case ResearchingSection, VisualizingSection:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Section)
	case Failed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	default:
		return s.Kind.String()
	}
}

func idleState() State        { return State{Kind: Idle, Section: -1} }
func outliningState() State   { return State{Kind: Outlining, Section: -1} }
func researching(i int) State { return State{Kind: ResearchingSection, Section: i} }
func visualizing(i int) State { return State{Kind: VisualizingSection, Section: i} }

func completedState(doc *types.Document) State {
	return State{Kind: Completed, Section: -1, Document: doc}
}

func failedState(reason string, err error) State {
	return State{Kind: Failed, Section: -1, Reason: reason, Err: err}
}

// Status is what an observer sees of a job at one point in time.
type Status struct {
	JobID   string
	Topic   string
	State   State
	Percent int
	Message string

	// Sections is the work in progress, in outline order. It is nil before
	// the outline is ready and after a failure. Observers must not modify it.
	Sections []types.Section

	UpdatedAt time.Time
}

// Observer receives every status change of a job, in order, on the job's
// goroutine. Observers must not block for long.
type Observer func(Status)
