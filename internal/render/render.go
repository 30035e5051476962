// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes a finished Document as Markdown, HTML, JSON, YAML,
// or a BibTeX bibliography.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperforge/pkg/types"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Write renders doc to w in the given format.
func Write(w io.Writer, doc *types.Document, format types.OutputFormat) error {
	var (
		out []byte
		err error
	)
	switch format {
	case types.OutputMarkdown, "":
		out = []byte(Markdown(doc))
	case types.OutputHTML:
		out, err = HTML(doc)
	case types.OutputJSON:
		out, err = JSON(doc)
	case types.OutputYAML:
		out, err = YAML(doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing %s output: %w", format, err)
	}
	return nil
}

// Markdown renders the document as a single Markdown file. Sections are
// numbered in outline order; a section's illustration precedes its prose.
func Markdown(doc *types.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Abstract != "" {
		fmt.Fprintf(&b, "## Abstract\n\n%s\n\n", strings.TrimSpace(doc.Abstract))
	}
	for i, s := range doc.Sections {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, s.Title)
		if s.HasImage() {
			fmt.Fprintf(&b, "![%s](%s)\n\n", altText(s.Title), s.ImageURL)
		}
		if body := strings.TrimSpace(s.Content); body != "" {
			fmt.Fprintf(&b, "%s\n\n", body)
		}
	}
	if len(doc.References) > 0 {
		b.WriteString("## References\n\n")
		for i, r := range doc.References {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, r.Title, r.URI)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the Markdown form through goldmark and wraps it in a
// standalone page.
func HTML(doc *types.Document) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", stdhtml.EscapeString(doc.Title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

// JSON renders the document as indented JSON.
func JSON(doc *types.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders the document as YAML.
func YAML(doc *types.Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return data, nil
}

func altText(title string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(title)
}
