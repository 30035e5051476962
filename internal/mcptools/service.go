// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcptools exposes paper generation as MCP tools. Jobs started
// through start_paper run in the background and are polled with
// paper_status.
package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/pipeline"
	"github.com/pdiddy/paperforge/internal/render"
	"github.com/pdiddy/paperforge/internal/runlog"
)

// DefaultMaxJobs bounds the job registry when no size is configured.
const DefaultMaxJobs = 64

// Starter launches generation jobs. *pipeline.Orchestrator implements it.
type Starter interface {
	Start(ctx context.Context, topic string, observers ...pipeline.Observer) (*pipeline.Job, error)
}

// Recorder persists job outcomes. *runlog.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e runlog.Entry) error
}

// PaperService holds the jobs started through the MCP tools.
type PaperService struct {
	starter Starter
	ledger  Recorder
	log     *zap.Logger

	// jobs is bounded; evicting a job that is still running cancels it,
	// since nothing could poll it afterwards.
	jobs *lru.Cache[string, *pipeline.Job]
}

// NewPaperService creates a PaperService keeping up to maxJobs jobs. A nil
// ledger disables outcome recording.
func NewPaperService(starter Starter, ledger Recorder, maxJobs int, logger *zap.Logger) (*PaperService, error) {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PaperService{starter: starter, ledger: ledger, log: logger}
	cache, err := lru.NewWithEvict[string, *pipeline.Job](maxJobs, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("creating job registry: %w", err)
	}
	s.jobs = cache
	return s, nil
}

func (s *PaperService) evicted(id string, j *pipeline.Job) {
	if !j.Status().State.Kind.Terminal() {
		s.log.Warn("evicting running job", zap.String("job_id", id))
		j.Cancel()
	}
}

// Shutdown cancels every job that is still running.
func (s *PaperService) Shutdown() {
	for _, j := range s.jobs.Values() {
		j.Cancel()
	}
}

// StartPaper launches a job for the topic and returns its id immediately.
func (s *PaperService) StartPaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartPaperInput,
) (*mcp.CallToolResult, StartPaperOutput, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return nil, StartPaperOutput{}, fmt.Errorf("topic is required")
	}

	// The job outlives the tool call, so it must not inherit its deadline.
	started := time.Now()
	j, err := s.starter.Start(context.WithoutCancel(ctx), input.Topic, s.recordOutcome(started))
	if err != nil {
		return nil, StartPaperOutput{}, err
	}
	s.jobs.Add(j.ID(), j)
	s.log.Info("paper started", zap.String("job_id", j.ID()), zap.String("topic", j.Topic()))

	st := j.Status()
	return nil, StartPaperOutput{
		JobID:   j.ID(),
		State:   st.State.String(),
		Percent: st.Percent,
		Message: st.Message,
	}, nil
}

// PaperStatus reports the progress of a job, and its rendered document once
// it has completed.
func (s *PaperService) PaperStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PaperStatusInput,
) (*mcp.CallToolResult, PaperStatusOutput, error) {
	j, err := s.lookup(input.JobID)
	if err != nil {
		return nil, PaperStatusOutput{}, err
	}
	st := j.Status()

	out := PaperStatusOutput{
		JobID:         st.JobID,
		Topic:         st.Topic,
		State:         st.State.String(),
		Percent:       st.Percent,
		Message:       st.Message,
		Done:          st.State.Kind.Terminal(),
		SectionsTotal: len(st.Sections),
	}
	for _, sec := range st.Sections {
		if !sec.Processing {
			out.SectionsDone++
		}
	}
	if doc := st.State.Document; doc != nil {
		out.Title = doc.Title
		out.References = len(doc.References)
		out.Images = doc.ImageCount()
		if input.IncludeDocument {
			out.Markdown = render.Markdown(doc)
		}
	}
	return nil, out, nil
}

// CancelPaper asks a running job to stop before its next backend call.
func (s *PaperService) CancelPaper(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CancelPaperInput,
) (*mcp.CallToolResult, CancelPaperOutput, error) {
	j, err := s.lookup(input.JobID)
	if err != nil {
		return nil, CancelPaperOutput{}, err
	}
	already := j.Status().State.Kind.Terminal()
	if !already {
		j.Cancel()
		s.log.Info("paper cancelled", zap.String("job_id", j.ID()))
	}
	return nil, CancelPaperOutput{JobID: j.ID(), AlreadyFinished: already}, nil
}

func (s *PaperService) lookup(id string) (*pipeline.Job, error) {
	if id == "" {
		return nil, fmt.Errorf("jobId is required")
	}
	j, ok := s.jobs.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown job %q", id)
	}
	return j, nil
}

// recordOutcome returns an observer that writes the terminal status to the
// ledger.
func (s *PaperService) recordOutcome(started time.Time) pipeline.Observer {
	return func(st pipeline.Status) {
		if s.ledger == nil || !st.State.Kind.Terminal() {
			return
		}
		if err := s.ledger.Record(context.Background(), runlog.FromStatus(st, started)); err != nil {
			s.log.Warn("recording run failed", zap.String("job_id", st.JobID), zap.Error(err))
		}
	}
}
