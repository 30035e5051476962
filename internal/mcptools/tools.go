// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcptools

// StartPaperInput is the input for the start_paper MCP tool.
type StartPaperInput struct {
	Topic string `json:"topic" jsonschema:"the research topic to write a paper about"`
}

// StartPaperOutput is the result of the start_paper MCP tool.
type StartPaperOutput struct {
	JobID   string `json:"jobId"`
	State   string `json:"state"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// PaperStatusInput is the input for the paper_status MCP tool.
type PaperStatusInput struct {
	JobID           string `json:"jobId" jsonschema:"the id returned by start_paper"`
	IncludeDocument bool   `json:"includeDocument,omitempty" jsonschema:"return the finished paper as Markdown once the job has completed"`
}

// PaperStatusOutput is the result of the paper_status MCP tool.
type PaperStatusOutput struct {
	JobID         string `json:"jobId"`
	Topic         string `json:"topic"`
	State         string `json:"state"`
	Percent       int    `json:"percent"`
	Message       string `json:"message"`
	Done          bool   `json:"done"`
	SectionsDone  int    `json:"sectionsDone"`
	SectionsTotal int    `json:"sectionsTotal"`
	Title         string `json:"title,omitempty"`
	References    int    `json:"references,omitempty"`
	Images        int    `json:"images,omitempty"`
	Markdown      string `json:"markdown,omitempty"`
}

// CancelPaperInput is the input for the cancel_paper MCP tool.
type CancelPaperInput struct {
	JobID string `json:"jobId" jsonschema:"the id returned by start_paper"`
}

// CancelPaperOutput is the result of the cancel_paper MCP tool.
type CancelPaperOutput struct {
	JobID           string `json:"jobId"`
	AlreadyFinished bool   `json:"alreadyFinished"`
}
