// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/mcptools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve paper generation as MCP tools on stdio",
	Long: `Serve runs an MCP server on stdin/stdout exposing three tools:
start_paper launches a job and returns its id, paper_status reports its
progress and the finished paper, and cancel_paper stops it.

Up to --max-jobs jobs are kept for polling; the least recently used job is
dropped (and cancelled if still running) when the limit is reached.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	maxJobs, _ := cmd.Flags().GetInt("max-jobs")

	cfg := loadConfig()
	orch, err := newOrchestrator(cmd, cfg)
	if err != nil {
		return err
	}

	var recorder mcptools.Recorder
	if ledger := openLedger(cfg.History); ledger != nil {
		defer ledger.Close()
		recorder = ledger
	}

	svc, err := mcptools.NewPaperService(orch, recorder, maxJobs, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mcp server starting", zap.Int("max_jobs", maxJobs))
	return mcptools.RunStdio(ctx, svc, version)
}

func init() {
	serveCmd.Flags().Int("max-jobs", mcptools.DefaultMaxJobs, "jobs kept in memory for polling")

	rootCmd.AddCommand(serveCmd)
}
