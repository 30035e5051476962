// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline converts a loosely formatted model response into a strict
// paper outline. The response is expected to be a JSON object, possibly
// wrapped in code fences or surrounded by explanatory prose.
package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/paperforge/pkg/types"
)

// ParseError reports a response that could not be interpreted as an outline.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing outline: %s: %v", e.Reason, e.Err)
	}
	return "parsing outline: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// fencePattern matches the body of the first fenced block: ```json ... ```.
var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")

type rawSection struct {
	Title            string `json:"title"`
	ImagePrompt      string `json:"imagePrompt"`
	ImagePromptSnake string `json:"image_prompt"`
}

type rawOutline struct {
	Title    string       `json:"title"`
	Abstract string       `json:"abstract"`
	Sections []rawSection `json:"sections"`
}

// SectionID returns the stable id for the section at position i.
func SectionID(i int) string {
	return fmt.Sprintf("sec-%d", i)
}

// Parse strips known noise from raw, decodes the JSON body, and validates
// it. The outline must have a non-empty title and at least one section, and
// every section must have a non-empty title; any violation fails the whole
// outline. Section ids are assigned by position (sec-0, sec-1, ...).
func Parse(raw string) (types.Outline, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.Outline{}, &ParseError{Reason: "empty response"}
	}
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	ro, err := findObject(s)
	if err != nil {
		return types.Outline{}, err
	}
	return validate(ro)
}

// findObject decodes a JSON object starting at each '{' in s in turn and
// returns the first one carrying a title and sections. Text after the
// object is ignored. When none qualifies, the first complete object is
// returned so validation can say what it lacks.
func findObject(s string) (rawOutline, error) {
	var (
		fallback    *rawOutline
		fallbackErr error
		firstErr    error
	)
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		var ro rawOutline
		err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&ro)
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil:
			if strings.TrimSpace(ro.Title) != "" && len(ro.Sections) > 0 {
				return ro, nil
			}
			if fallback == nil && fallbackErr == nil {
				fallback = &ro
			}
		case errors.As(err, &typeErr):
			// A complete object with a wrongly typed field.
			if fallback == nil && fallbackErr == nil {
				fallbackErr = err
			}
		default:
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	switch {
	case fallbackErr != nil:
		return rawOutline{}, &ParseError{Reason: "invalid JSON", Err: fallbackErr}
	case fallback != nil:
		return *fallback, nil
	case firstErr != nil:
		return rawOutline{}, &ParseError{Reason: "invalid JSON", Err: firstErr}
	}
	return rawOutline{}, &ParseError{Reason: "no JSON object in response"}
}

func validate(ro rawOutline) (types.Outline, error) {
	title := strings.TrimSpace(ro.Title)
	if title == "" {
		return types.Outline{}, &ParseError{Reason: "missing title"}
	}
	if len(ro.Sections) == 0 {
		return types.Outline{}, &ParseError{Reason: "outline has no sections"}
	}

	out := types.Outline{
		Title:    title,
		Abstract: strings.TrimSpace(ro.Abstract),
		Sections: make([]types.SectionStub, 0, len(ro.Sections)),
	}
	for i, rs := range ro.Sections {
		st := strings.TrimSpace(rs.Title)
		if st == "" {
			return types.Outline{}, &ParseError{Reason: fmt.Sprintf("section %d has no title", i)}
		}
		prompt := strings.TrimSpace(rs.ImagePrompt)
		if prompt == "" {
			prompt = strings.TrimSpace(rs.ImagePromptSnake)
		}
		out.Sections = append(out.Sections, types.SectionStub{
			ID:          SectionID(i),
			Title:       st,
			ImagePrompt: prompt,
		})
	}
	return out, nil
}
