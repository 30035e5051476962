// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the generation pipeline,
// its adapters, and the document consumers.
package types

import "time"

// Citation is a source returned by a grounded generative call.
// Identity is the URI; the boundary shape is exactly {title, uri}.
type Citation struct {
	// Title is the source's display title.
	Title string `json:"title" yaml:"title"`

	// URI locates the source.
	URI string `json:"uri" yaml:"uri"`
}

// SectionStub is one entry of a parsed outline, before content is filled in.
type SectionStub struct {
	// ID is derived from the stub's position in the outline (sec-0, sec-1, ...).
	ID string `json:"id" yaml:"id"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// ImagePrompt describes the illustration for this section. Empty means
	// the section has no image.
	ImagePrompt string `json:"image_prompt,omitempty" yaml:"image_prompt,omitempty"`
}

// HasImagePrompt reports whether the stub asks for an illustration.
func (s SectionStub) HasImagePrompt() bool {
	return s.ImagePrompt != ""
}

// Outline is the skeleton of a paper: title, abstract, and ordered stubs.
// It is produced once per job and never mutated after parsing.
type Outline struct {
	Title    string        `json:"title" yaml:"title"`
	Abstract string        `json:"abstract" yaml:"abstract"`
	Sections []SectionStub `json:"sections" yaml:"sections"`
}

// Section is a SectionStub materialized with generated content.
type Section struct {
	SectionStub `yaml:",inline"`

	// Content is the generated prose for the section (Markdown).
	Content string `json:"content" yaml:"content"`

	// ImageURL locates the section illustration. Empty means absent.
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// Processing is true while the section's content is still pending.
	Processing bool `json:"processing" yaml:"processing"`
}

// HasImage reports whether an illustration was produced for the section.
func (s Section) HasImage() bool {
	return s.ImageURL != ""
}

// Document is the finished paper. It is created exactly once, when a job
// completes, and is not modified afterwards.
type Document struct {
	Title       string     `json:"title" yaml:"title"`
	Abstract    string     `json:"abstract" yaml:"abstract"`
	Sections    []Section  `json:"sections" yaml:"sections"`
	References  []Citation `json:"references" yaml:"references"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
}

// ImageCount returns the number of sections carrying an illustration.
func (d *Document) ImageCount() int {
	n := 0
	for _, s := range d.Sections {
		if s.HasImage() {
			n++
		}
	}
	return n
}
