// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation merges citation metadata gathered across pipeline phases.
package citation

import (
	"strings"

	"github.com/pdiddy/paperforge/pkg/types"
)

// Dedupe returns the records with duplicate URIs removed, keeping the first
// occurrence of each URI and preserving input order. Titles and URIs are
// trimmed before comparison and in the result. Records with an empty title
// or URI are dropped; malformed grounding metadata is expected and is not an
// error. Dedupe never modifies its input.
func Dedupe(records []types.Citation) []types.Citation {
	seen := make(map[string]bool, len(records))
	out := make([]types.Citation, 0, len(records))
	for _, r := range records {
		r.Title = strings.TrimSpace(r.Title)
		r.URI = strings.TrimSpace(r.URI)
		if r.Title == "" || r.URI == "" {
			continue
		}
		if seen[r.URI] {
			continue
		}
		seen[r.URI] = true
		out = append(out, r)
	}
	return out
}

// Merge concatenates the lists in order and dedupes the result.
func Merge(lists ...[]types.Citation) []types.Citation {
	var all []types.Citation
	for _, l := range lists {
		all = append(all, l...)
	}
	return Dedupe(all)
}
