// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportBands(t *testing.T) {
	tests := []struct {
		name      string
		phase     Phase
		completed int
		total     int
		wantPct   int
		wantMsg   string
	}{
		{"idle", PhaseIdle, 0, 0, 0, "Waiting to start"},
		{"outline start", PhaseOutline, 0, 1, 5, "Drafting outline and researching sources..."},
		{"outline done", PhaseOutline, 1, 1, 30, "Outline ready"},
		{"content first of five", PhaseContent, 0, 5, 30, "Researching section 1 of 5..."},
		{"content third of five", PhaseContent, 2, 5, 46, "Researching section 3 of 5..."},
		{"content done", PhaseContent, 5, 5, 70, "All sections written"},
		{"images first of four", PhaseImages, 0, 4, 70, "Illustrating section 1 of 4..."},
		{"images half", PhaseImages, 2, 4, 85, "Illustrating section 3 of 4..."},
		{"images done", PhaseImages, 4, 4, 100, "Illustrations finished"},
		{"images none requested", PhaseImages, 0, 0, 100, "Illustrations finished"},
		{"complete", PhaseComplete, 0, 0, 100, "Paper complete"},
		{"completed clamped high", PhaseContent, 9, 5, 70, "All sections written"},
		{"completed clamped low", PhaseContent, -3, 5, 30, "Researching section 1 of 5..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, msg := Report(tt.phase, tt.completed, tt.total)
			assert.Equal(t, tt.wantPct, pct)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestReportMonotonicAcrossJob(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 13} {
		for imgs := 0; imgs <= n; imgs++ {
			var seq []int
			add := func(p Phase, c, total int) {
				pct, _ := Report(p, c, total)
				seq = append(seq, pct)
			}
			add(PhaseIdle, 0, 0)
			add(PhaseOutline, 0, 1)
			add(PhaseOutline, 1, 1)
			for i := 0; i <= n; i++ {
				add(PhaseContent, i, n)
			}
			for i := 0; i <= imgs; i++ {
				add(PhaseImages, i, imgs)
			}
			add(PhaseComplete, 0, 0)

			for i := 1; i < len(seq); i++ {
				assert.GreaterOrEqual(t, seq[i], seq[i-1], "n=%d imgs=%d step=%d seq=%v", n, imgs, i, seq)
			}
			assert.Equal(t, 100, seq[len(seq)-1])
		}
	}
}

func TestTrackerNeverDecreases(t *testing.T) {
	var tr Tracker
	pct, _ := tr.Report(PhaseContent, 3, 4)
	assert.Equal(t, 60, pct)

	// An out-of-order report is clamped to the previous high.
	pct, msg := tr.Report(PhaseOutline, 0, 1)
	assert.Equal(t, 60, pct)
	assert.Equal(t, "Drafting outline and researching sources...", msg)
	assert.Equal(t, 60, tr.Last())

	pct, _ = tr.Report(PhaseComplete, 0, 0)
	assert.Equal(t, 100, pct)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "content", PhaseContent.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}

func TestReportUnknownPhase(t *testing.T) {
	pct, msg := Report(Phase(99), 1, 2)
	assert.Equal(t, 0, pct)
	assert.Equal(t, "Unknown phase", msg)
}
