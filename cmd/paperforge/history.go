// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperforge/internal/runlog"
)

var historyCmd = &cobra.Command{
	Use:   "history [job-id]",
	Short: "List recorded job outcomes",
	Long: `History reads the run ledger and lists recent jobs, newest first, with
their final state and counts. Pass a job id to show a single run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	if cfg.History.DBPath == "" {
		return fmt.Errorf("run ledger is disabled: set history.db_path or --history-db")
	}
	store, err := runlog.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []runlog.Entry
	if len(args) == 1 {
		e, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		entries = []runlog.Entry{e}
	} else {
		entries, err = store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}
	return formatHistoryOutput(entries, jsonOutput)
}

func formatHistoryOutput(entries []runlog.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-40s  %-9s  %4s  %4s  %4s  %s\n",
		"Job", "Finished", "Topic", "State", "Secs", "Imgs", "Refs", "Took")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 140))

	for _, e := range entries {
		topic := e.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-40s  %-9s  %4d  %4d  %4d  %s\n",
			e.JobID, e.FinishedAt.Local().Format("2006-01-02 15:04:05"), topic, e.State,
			e.Sections, e.Images, e.References, e.Duration().Round(time.Second))
		if e.Reason != "" {
			fmt.Fprintf(os.Stdout, "%-36s  reason: %s\n", "", e.Reason)
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(entries))
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}
