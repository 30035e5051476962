// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/pipeline"
	"github.com/pdiddy/paperforge/internal/render"
	"github.com/pdiddy/paperforge/internal/runlog"
	"github.com/pdiddy/paperforge/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic...>",
	Short: "Generate one paper for a topic",
	Long: `Generate runs the full pipeline for one topic: outline, section content,
then section illustrations. Progress is printed to stderr and the finished
paper is written to stdout or --output.

Interrupting with Ctrl-C stops the job before its next model request.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	bibPath, _ := cmd.Flags().GetString("bibtex")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if err := checkFormat(types.OutputFormat(format)); err != nil {
		return err
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

	var observers []pipeline.Observer
	if !quiet {
		observers = append(observers, progressPrinter(os.Stderr, ""))
	}

	started := time.Now()
	j, err := orch.Start(ctx, strings.Join(args, " "), observers...)
	if err != nil {
		return err
	}
	st, _ := j.Wait(context.Background())
	recordRun(ledger, st, started)

	if st.State.Kind == pipeline.Failed {
		return errors.New(pipeline.FailedMessage)
	}
	doc := st.State.Document

	if err := writeDocument(outPath, doc, types.OutputFormat(format)); err != nil {
		return err
	}
	if bibPath != "" {
		if err := os.WriteFile(bibPath, []byte(render.BibTeX(doc.References)), 0o644); err != nil {
			return fmt.Errorf("writing bibliography: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d sections, %d illustrations, %d references\n",
		len(doc.Sections), doc.ImageCount(), len(doc.References))
	return nil
}

func checkFormat(f types.OutputFormat) error {
	switch f {
	case types.OutputMarkdown, types.OutputHTML, types.OutputJSON, types.OutputYAML:
		return nil
	}
	return fmt.Errorf("unsupported format %q: use markdown, html, json, or yaml", f)
}

// createFile opens an output file. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// writeDocument renders doc to path, or to stdout when path is empty.
func writeDocument(path string, doc *types.Document, format types.OutputFormat) (err error) {
	if path == "" {
		return render.Write(os.Stdout, doc, format)
	}
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return render.Write(f, doc, format)
}

// progressPrinter returns an observer that prints one line per new status
// message. prefix labels the job when several run at once.
func progressPrinter(w io.Writer, prefix string) pipeline.Observer {
	var (
		mu   sync.Mutex
		last string
	)
	return func(st pipeline.Status) {
		mu.Lock()
		defer mu.Unlock()
		if st.Message == last {
			return
		}
		last = st.Message
		fmt.Fprintf(w, "%s[%3d%%] %s\n", prefix, st.Percent, st.Message)
	}
}

// recordRun writes the final status to the ledger when one is open.
func recordRun(ledger *runlog.Store, st pipeline.Status, started time.Time) {
	if ledger == nil {
		return
	}
	if err := ledger.Record(context.Background(), runlog.FromStatus(st, started)); err != nil {
		logger.Warn("recording run failed", zap.String("job_id", st.JobID), zap.Error(err))
	}
}

func init() {
	generateCmd.Flags().StringP("format", "f", string(types.OutputMarkdown), "output format: markdown, html, json, or yaml")
	generateCmd.Flags().StringP("output", "o", "", "write the paper to this file instead of stdout")
	generateCmd.Flags().String("bibtex", "", "also write the references as BibTeX to this file")
	generateCmd.Flags().BoolP("quiet", "q", false, "do not print progress lines")

	rootCmd.AddCommand(generateCmd)
}
