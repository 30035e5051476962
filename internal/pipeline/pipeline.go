// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives a paper generation job through its three
// dependent phases: outline, section content, and section images.
//
// A job runs on its own goroutine as a strictly sequential chain of backend
// calls. Outline and content failures are fatal for the job; an image
// failure only leaves that section without an illustration. Observers see
// every transition in order, with a percentage that never decreases.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/genclient"
	"github.com/pdiddy/paperforge/internal/imagestore"
	"github.com/pdiddy/paperforge/internal/progress"
	"github.com/pdiddy/paperforge/pkg/types"
)

// Orchestrator starts generation jobs against one shared backend client.
// It holds no per-job state, so independent jobs may run concurrently.
type Orchestrator struct {
	client genclient.Client
	images imagestore.Store
	cfg    types.GenerationConfig
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates an Orchestrator. A nil images store embeds
// illustrations as data URLs; a nil logger discards log output.
func NewOrchestrator(client genclient.Client, images imagestore.Store, cfg types.GenerationConfig, logger *zap.Logger) *Orchestrator {
	if images == nil {
		images = imagestore.DataURLStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		client: client,
		images: images,
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Start validates topic and launches a job for it. An empty or
// whitespace-only topic is rejected with a *PreconditionError and no job is
// created. Cancelling ctx aborts the job before its next backend call.
func (o *Orchestrator) Start(ctx context.Context, topic string, observers ...Observer) (*Job, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &PreconditionError{Field: "topic", Reason: "must not be empty"}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	j := &Job{
		id:        o.newID(),
		topic:     topic,
		observers: append([]Observer(nil), observers...),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	j.status = Status{
		JobID:     j.id,
		Topic:     topic,
		State:     idleState(),
		Message:   "Waiting to start",
		UpdatedAt: o.now(),
	}

	go o.run(jobCtx, j)
	return j, nil
}

// Run starts a job and waits for it to finish. It returns the document of a
// completed job, or the cause of a failed one.
func (o *Orchestrator) Run(ctx context.Context, topic string, observers ...Observer) (*types.Document, error) {
	j, err := o.Start(ctx, topic, observers...)
	if err != nil {
		return nil, err
	}
	<-j.Done()
	st := j.Status()
	if st.State.Kind == Failed {
		return nil, st.State.Err
	}
	return st.State.Document, nil
}

// Job is a handle on one running or finished generation job.
type Job struct {
	id    string
	topic string

	mu        sync.RWMutex
	status    Status
	observers []Observer

	tracker progress.Tracker
	calls   int

	done   chan struct{}
	cancel context.CancelFunc
}

// ID returns the job's unique id.
func (j *Job) ID() string { return j.id }

// Topic returns the topic the job was started with, trimmed.
func (j *Job) Topic() string { return j.topic }

// Status returns a snapshot of the job's current status.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Done is closed once the job reaches Completed or Failed.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx is done, and returns the final
// status.
func (j *Job) Wait(ctx context.Context) (Status, error) {
	select {
	case <-j.done:
		return j.Status(), nil
	case <-ctx.Done():
		return j.Status(), ctx.Err()
	}
}

// Cancel asks the job to stop before its next backend call. A backend call
// already in flight is not interrupted by the pipeline itself.
func (j *Job) Cancel() { j.cancel() }

// set records a new status and notifies observers on the calling goroutine.
func (j *Job) set(st Status) {
	j.mu.Lock()
	j.status = st
	observers := j.observers
	j.mu.Unlock()
	for _, obs := range observers {
		obs(st)
	}
}
