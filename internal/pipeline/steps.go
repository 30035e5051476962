// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/citation"
	"github.com/pdiddy/paperforge/internal/genclient"
	"github.com/pdiddy/paperforge/internal/outline"
	"github.com/pdiddy/paperforge/internal/progress"
	"github.com/pdiddy/paperforge/pkg/types"
)

// accumulator is the job's work so far. Steps never modify an accumulator
// in place; each returns a new one, so snapshots handed to observers stay
// valid.
type accumulator struct {
	outline   types.Outline
	sections  []types.Section
	citations []types.Citation
}

func newAccumulator(o types.Outline, cites []types.Citation) accumulator {
	sections := make([]types.Section, len(o.Sections))
	for i, stub := range o.Sections {
		sections[i] = types.Section{SectionStub: stub, Processing: true}
	}
	return accumulator{outline: o, sections: sections, citations: slices.Clone(cites)}
}

func (a accumulator) withSection(i int, s types.Section) accumulator {
	a.sections = slices.Clone(a.sections)
	a.sections[i] = s
	return a
}

func (a accumulator) withCitations(cites []types.Citation) accumulator {
	if len(cites) == 0 {
		return a
	}
	a.citations = append(slices.Clone(a.citations), cites...)
	return a
}

// run drives the job from Outlining to a terminal state.
func (o *Orchestrator) run(ctx context.Context, j *Job) {
	defer close(j.done)
	defer j.cancel()

	log := o.log.With(zap.String("job_id", j.id))
	log.Info("job started", zap.String("topic", j.topic))

	acc, f := o.outlinePhase(ctx, j)
	if f == nil {
		acc, f = o.contentPhase(ctx, j, acc)
	}
	if f == nil {
		acc, f = o.imagePhase(ctx, j, acc, log)
	}
	if f != nil {
		o.fail(j, f, log)
		return
	}

	doc := &types.Document{
		Title:       acc.outline.Title,
		Abstract:    acc.outline.Abstract,
		Sections:    slices.Clone(acc.sections),
		References:  citation.Dedupe(acc.citations),
		GeneratedAt: o.now(),
	}
	pct, msg := j.tracker.Report(progress.PhaseComplete, 0, 0)
	o.transition(j, completedState(doc), pct, msg, doc.Sections)
	log.Info("job completed",
		zap.Int("sections", len(doc.Sections)),
		zap.Int("images", doc.ImageCount()),
		zap.Int("references", len(doc.References)))
}

func (o *Orchestrator) outlinePhase(ctx context.Context, j *Job) (accumulator, *failure) {
	pct, msg := j.tracker.Report(progress.PhaseOutline, 0, 1)
	o.transition(j, outliningState(), pct, msg, nil)

	if err := o.beforeCall(ctx, j); err != nil {
		return accumulator{}, &failure{reason: ReasonCancelled, err: err}
	}
	resp, err := callWithRetry(ctx, o.cfg.MaxRetries, func(ctx context.Context) (genclient.Response, error) {
		return o.client.Outline(ctx, j.topic)
	})
	if err != nil {
		return accumulator{}, o.callFailure(ctx, ReasonOutline, err)
	}

	parsed, err := outline.Parse(resp.Text)
	if err != nil {
		return accumulator{}, &failure{reason: ReasonParse, err: err}
	}
	return newAccumulator(parsed, citation.Dedupe(resp.Citations)), nil
}

func (o *Orchestrator) contentPhase(ctx context.Context, j *Job, acc accumulator) (accumulator, *failure) {
	n := len(acc.sections)
	for i := 0; i < n; i++ {
		sec := acc.sections[i]
		pct, msg := j.tracker.Report(progress.PhaseContent, i, n)
		o.transition(j, researching(i), pct, msg, acc.sections)

		if err := o.beforeCall(ctx, j); err != nil {
			return acc, &failure{reason: ReasonCancelled, err: err}
		}
		resp, err := callWithRetry(ctx, o.cfg.MaxRetries, func(ctx context.Context) (genclient.Response, error) {
			return o.client.SectionContent(ctx, acc.outline.Title, sec.Title, acc.outline.Abstract)
		})
		if err != nil {
			return acc, o.callFailure(ctx, contentReason(i, sec.Title), err)
		}

		sec.Content = resp.Text
		sec.Processing = false
		acc = acc.withSection(i, sec).withCitations(citation.Dedupe(resp.Citations))
	}
	return acc, nil
}

// imagePhase requests an illustration for every section with a prompt.
// Only cancellation fails the job here; any other error leaves the section
// without an image.
func (o *Orchestrator) imagePhase(ctx context.Context, j *Job, acc accumulator, log *zap.Logger) (accumulator, *failure) {
	var targets []int
	for i, s := range acc.sections {
		if s.HasImagePrompt() {
			targets = append(targets, i)
		}
	}

	for k, i := range targets {
		sec := acc.sections[i]
		pct, msg := j.tracker.Report(progress.PhaseImages, k, len(targets))
		o.transition(j, visualizing(i), pct, msg, acc.sections)

		if err := o.beforeCall(ctx, j); err != nil {
			return acc, &failure{reason: ReasonCancelled, err: err}
		}
		img, err := callWithRetry(ctx, o.cfg.MaxRetries, func(ctx context.Context) (genclient.Image, error) {
			return o.client.SectionImage(ctx, sec.ImagePrompt)
		})
		if err != nil {
			if ctx.Err() != nil {
				return acc, &failure{reason: ReasonCancelled, err: ctx.Err()}
			}
			log.Warn("image generation failed", zap.String("section_id", sec.ID), zap.Error(err))
			continue
		}

		url, err := o.images.Put(ctx, j.id, sec.ID, img.Data, img.MIMEType)
		if err != nil {
			log.Warn("storing image failed", zap.String("section_id", sec.ID), zap.Error(err))
			continue
		}
		sec.ImageURL = url
		acc = acc.withSection(i, sec)
	}
	return acc, nil
}

// beforeCall checks for cancellation and paces consecutive backend calls.
func (o *Orchestrator) beforeCall(ctx context.Context, j *Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if j.calls > 0 && o.cfg.RequestDelay > 0 {
		if err := sleep(ctx, o.cfg.RequestDelay); err != nil {
			return err
		}
	}
	j.calls++
	return nil
}

// callFailure classifies a failed backend call, reporting cancellation in
// preference to whatever error the interrupted call returned.
func (o *Orchestrator) callFailure(ctx context.Context, reason string, err error) *failure {
	if ctx.Err() != nil {
		return &failure{reason: ReasonCancelled, err: ctx.Err()}
	}
	return &failure{reason: reason, err: err}
}

func (o *Orchestrator) fail(j *Job, f *failure, log *zap.Logger) {
	err := fmt.Errorf("%s: %w", f.reason, f.err)
	o.transition(j, failedState(f.reason, err), j.tracker.Last(), FailedMessage, nil)
	log.Error("job failed", zap.String("reason", f.reason), zap.Error(f.err))
}

func (o *Orchestrator) transition(j *Job, st State, pct int, msg string, sections []types.Section) {
	o.log.Debug("transition",
		zap.String("job_id", j.id),
		zap.Stringer("state", st),
		zap.Int("percent", pct))
	j.set(Status{
		JobID:     j.id,
		Topic:     j.topic,
		State:     st,
		Percent:   pct,
		Message:   msg,
		Sections:  sections,
		UpdatedAt: o.now(),
	})
}
