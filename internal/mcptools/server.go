// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with the paper tools registered.
func NewServer(svc *PaperService, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "paperforge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_paper",
		Description: "Start generating a research paper on a topic. Returns a job id immediately; poll paper_status for progress.",
	}, svc.StartPaper)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "paper_status",
		Description: "Get the state, progress percentage, and status message of a paper job. Set includeDocument to receive the finished paper as Markdown.",
	}, svc.PaperStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_paper",
		Description: "Cancel a running paper job. The job stops before its next model request and is reported as failed.",
	}, svc.CancelPaper)

	return server
}

// RunStdio serves the MCP tools on stdio until stdin closes or ctx is
// cancelled. Running jobs are cancelled on return.
func RunStdio(ctx context.Context, svc *PaperService, version string) error {
	defer svc.Shutdown()
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}
