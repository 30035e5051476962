// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperforge/pkg/types"
)

func sampleDoc() *types.Document {
	return &types.Document{
		Title:    "Fish & Chips",
		Abstract: "A survey of fried food.",
		Sections: []types.Section{
			{
				SectionStub: types.SectionStub{ID: "sec-0", Title: "Intro", ImagePrompt: "a plate"},
				Content:     "Fried food is **popular**.",
				ImageURL:    "data:image/png;base64,AA==",
			},
			{
				SectionStub: types.SectionStub{ID: "sec-1", Title: "History"},
				Content:     "It began long ago.\n",
			},
		},
		References: []types.Citation{
			{Title: "Batter Science", URI: "https://a.example/batter"},
			{Title: "Oil Temps", URI: "https://b.example/oil"},
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleDoc())
	want := "# Fish & Chips\n\n" +
		"## Abstract\n\nA survey of fried food.\n\n" +
		"## 1. Intro\n\n![Intro](data:image/png;base64,AA==)\n\nFried food is **popular**.\n\n" +
		"## 2. History\n\nIt began long ago.\n\n" +
		"## References\n\n" +
		"1. [Batter Science](https://a.example/batter)\n" +
		"2. [Oil Temps](https://b.example/oil)\n\n"
	assert.Equal(t, want, got)
}

func TestMarkdownOmitsEmptyParts(t *testing.T) {
	doc := &types.Document{
		Title:    "Bare",
		Sections: []types.Section{{SectionStub: types.SectionStub{ID: "sec-0", Title: "Only"}}},
	}
	got := Markdown(doc)
	assert.Equal(t, "# Bare\n\n## 1. Only\n\n", got)
	assert.NotContains(t, got, "References")
	assert.NotContains(t, got, "![")
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleDoc())
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Fish &amp; Chips</title>")
	assert.Contains(t, page, "<h1>Fish &amp; Chips</h1>")
	assert.Contains(t, page, `<img src="data:image/png;base64,AA=="`)
	assert.Contains(t, page, "<strong>popular</strong>")
	assert.Contains(t, page, `<a href="https://a.example/batter">Batter Science</a>`)
	assert.True(t, strings.HasSuffix(page, "</html>\n"))
}

func TestJSON(t *testing.T) {
	out, err := JSON(sampleDoc())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "Fish & Chips", got["title"])

	sections := got["sections"].([]any)
	require.Len(t, sections, 2)
	first := sections[0].(map[string]any)
	assert.Equal(t, "sec-0", first["id"])
	assert.Equal(t, "a plate", first["image_prompt"])
	second := sections[1].(map[string]any)
	assert.NotContains(t, second, "image_url")

	refs := got["references"].([]any)
	assert.Equal(t, map[string]any{"title": "Batter Science", "uri": "https://a.example/batter"}, refs[0])
}

func TestYAML(t *testing.T) {
	out, err := YAML(sampleDoc())
	require.NoError(t, err)

	var got types.Document
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, sampleDoc().Sections, got.Sections)
	assert.Equal(t, sampleDoc().References, got.References)
	assert.Contains(t, string(out), "id: sec-0")
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format  types.OutputFormat
		prefix  string
		wantErr bool
	}{
		{format: "", prefix: "# Fish"},
		{format: types.OutputMarkdown, prefix: "# Fish"},
		{format: types.OutputHTML, prefix: "<!DOCTYPE html>"},
		{format: types.OutputJSON, prefix: "{"},
		{format: types.OutputYAML, prefix: "title: Fish"},
		{format: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, sampleDoc(), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(buf.String(), tt.prefix), buf.String())
		})
	}
}

func TestBibTeX(t *testing.T) {
	got := BibTeX([]types.Citation{
		{Title: "Batter Science", URI: "https://a.example/batter"},
		{Title: "Oil & Heat_2024", URI: "https://b.example/oil?q=1#frag"},
	})
	want := "@misc{ref1,\n" +
		"  title = {Batter Science},\n" +
		"  howpublished = {\\url{https://a.example/batter}},\n" +
		"}\n\n" +
		"@misc{ref2,\n" +
		"  title = {Oil \\& Heat\\_2024},\n" +
		"  howpublished = {\\url{https://b.example/oil?q=1\\#frag}},\n" +
		"}\n\n"
	assert.Equal(t, want, got)
}

func TestBibTeXEmpty(t *testing.T) {
	assert.Empty(t, BibTeX(nil))
}
