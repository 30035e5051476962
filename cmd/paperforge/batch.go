// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paperforge/internal/pipeline"
	"github.com/pdiddy/paperforge/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate papers for every topic in a file",
	Long: `Batch reads one topic per line from --topics-file (blank lines and lines
starting with # are ignored) and runs an independent job for each, up to
--concurrency at a time. Each finished paper is written to --output-dir.

A failed job does not stop the others. The command exits non-zero if any
job failed.`,
	RunE: runBatch,
}

// batchResult is the outcome of one topic in a batch.
type batchResult struct {
	topic string
	path  string
	err   error
}

func runBatch(cmd *cobra.Command, args []string) error {
	topicsFile, _ := cmd.Flags().GetString("topics-file")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	outDir, _ := cmd.Flags().GetString("output-dir")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(types.OutputFormat(format)); err != nil {
		return err
	}

	topics, err := readTopics(topicsFile)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics in %s", topicsFile)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cfg := loadConfig()
	orch, err := newOrchestrator(cmd, cfg)
	if err != nil {
		return err
	}
	ledger := openLedger(cfg.History)
	if ledger != nil {
		defer ledger.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make([]batchResult, len(topics))
	for i, topic := range topics {
		g.Go(func() error {
			prefix := fmt.Sprintf("[%d/%d] ", i+1, len(topics))
			started := time.Now()
			j, err := orch.Start(gctx, topic, progressPrinter(os.Stderr, prefix))
			if err != nil {
				results[i] = batchResult{topic: topic, err: err}
				return nil
			}
			<-j.Done()
			st := j.Status()
			recordRun(ledger, st, started)

			if st.State.Kind == pipeline.Failed {
				results[i] = batchResult{topic: topic, err: fmt.Errorf("%s", st.State.Reason)}
				return nil
			}
			path := filepath.Join(outDir, fmt.Sprintf("%02d-%s.%s", i+1, slug(topic), extension(types.OutputFormat(format))))
			if err := writeDocument(path, st.State.Document, types.OutputFormat(format)); err != nil {
				results[i] = batchResult{topic: topic, err: err}
				return nil
			}
			results[i] = batchResult{topic: topic, path: path}
			return nil
		})
	}
	// Jobs report failures through results; Wait only joins them.
	_ = g.Wait()

	failed := 0
	fmt.Fprintln(os.Stdout)
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", r.topic, r.err)
			continue
		}
		fmt.Fprintf(os.Stdout, "wrote   %s\n", r.path)
	}
	fmt.Fprintf(os.Stdout, "\ncompleted: %d, failed: %d\n", len(results)-failed, failed)

	if failed > 0 {
		return fmt.Errorf("%d topic(s) failed", failed)
	}
	return nil
}

// readTopics returns the non-blank, non-comment lines of path, trimmed.
func readTopics(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("--topics-file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening topics file: %w", err)
	}
	defer f.Close()

	var topics []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	return topics, nil
}

// slug turns a topic into a lowercase, hyphen-separated file name stem.
func slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if r := []rune(s); len(r) > 60 {
		s = strings.TrimSuffix(string(r[:60]), "-")
	}
	if s == "" {
		s = "paper"
	}
	return s
}

func extension(f types.OutputFormat) string {
	switch f {
	case types.OutputHTML:
		return "html"
	case types.OutputJSON:
		return "json"
	case types.OutputYAML:
		return "yaml"
	default:
		return "md"
	}
}

func init() {
	batchCmd.Flags().String("topics-file", "", "file with one topic per line")
	batchCmd.Flags().IntP("concurrency", "c", 2, "number of jobs to run at once")
	batchCmd.Flags().String("output-dir", "papers", "directory for finished papers")
	batchCmd.Flags().StringP("format", "f", string(types.OutputMarkdown), "output format: markdown, html, json, or yaml")

	rootCmd.AddCommand(batchCmd)
}
