// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import "fmt"

// outlineSchema describes the JSON object the outline prompt asks for.
const outlineSchema = `{
  "title": "string",
  "abstract": "string",
  "sections": [
    {"title": "string", "imagePrompt": "string describing a scientific illustration"}
  ]
}`

// OutlinePrompt builds the request for a paper outline.
func OutlinePrompt(topic string) string {
	return fmt.Sprintf(`You are an academic researcher. Research the topic %q using current sources
and design the structure of a research paper about it.

Produce a compelling title, a concise abstract of about 150 words, and 4-6
substantial sections. For every section give a visual prompt for a clean,
scientific illustration that supports it.

Respond with a single JSON object and nothing else, using exactly this shape:
%s`, topic, outlineSchema)
}

// SectionPrompt builds the request for the prose of one section.
func SectionPrompt(paperTitle, sectionTitle, abstract string) string {
	return fmt.Sprintf(`You are writing the research paper %q.

Abstract:
%s

Write the section %q. Use current, verifiable sources. Write 2-4 paragraphs
of formal academic prose in Markdown. Do not repeat the section title as a
heading and do not include a reference list; sources are collected separately.`,
		paperTitle, abstract, sectionTitle)
}

// ImagePrompt builds the request for a section illustration.
func ImagePrompt(prompt string) string {
	return fmt.Sprintf("A high-quality scientific illustration for a research paper, clean white background, no text labels: %s", prompt)
}
