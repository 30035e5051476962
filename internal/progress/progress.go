// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress maps pipeline position to a percentage and a status
// message. Each phase owns a fixed band so percentages only move forward as
// a job advances.
package progress

import (
	"fmt"
	"sync"
)

// Phase is a stage of the generation pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOutline
	PhaseContent
	PhaseImages
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOutline:
		return "outline"
	case PhaseContent:
		return "content"
	case PhaseImages:
		return "images"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// band is the percentage range [lo, hi] owned by a phase.
type band struct{ lo, hi int }

var bands = map[Phase]band{
	PhaseIdle:     {0, 0},
	PhaseOutline:  {5, 30},
	PhaseContent:  {30, 70},
	PhaseImages:   {70, 100},
	PhaseComplete: {100, 100},
}

// Report returns the percentage and message for a job in phase that has
// finished completed of total items. completed is clamped into [0, total];
// a phase with no items reports its upper bound.
func Report(phase Phase, completed, total int) (int, string) {
	b, ok := bands[phase]
	if !ok {
		return 0, "Unknown phase"
	}
	if completed < 0 {
		completed = 0
	}
	if total > 0 && completed > total {
		completed = total
	}

	pct := b.hi
	if total > 0 {
		pct = b.lo + (b.hi-b.lo)*completed/total
	}
	return pct, message(phase, completed, total)
}

func message(phase Phase, completed, total int) string {
	switch phase {
	case PhaseIdle:
		return "Waiting to start"
	case PhaseOutline:
		if total > 0 && completed >= total {
			return "Outline ready"
		}
		return "Drafting outline and researching sources..."
	case PhaseContent:
		if completed >= total {
			return "All sections written"
		}
		return fmt.Sprintf("Researching section %d of %d...", completed+1, total)
	case PhaseImages:
		if completed >= total {
			return "Illustrations finished"
		}
		return fmt.Sprintf("Illustrating section %d of %d...", completed+1, total)
	case PhaseComplete:
		return "Paper complete"
	default:
		return ""
	}
}

// Tracker remembers the highest percentage reported for one job and never
// hands out a lower one.
type Tracker struct {
	mu   sync.Mutex
	last int
}

// Report calls the package-level Report and clamps the result so it is not
// lower than any percentage this Tracker returned before.
func (t *Tracker) Report(phase Phase, completed, total int) (int, string) {
	pct, msg := Report(phase, completed, total)
	t.mu.Lock()
	defer t.mu.Unlock()
	if pct < t.last {
		pct = t.last
	}
	t.last = pct
	return pct, msg
}

// Last returns the highest percentage reported so far.
func (t *Tracker) Last() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
