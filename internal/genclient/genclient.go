// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genclient wraps the external generative capability used by the
// paper pipeline. Each method is a single blocking round trip; retries and
// pacing belong to the caller.
package genclient

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/pkg/types"
)

// Operation names carried by Error.
const (
	OpOutline = "outline"
	OpContent = "section content"
	OpImage   = "section image"
)

// ErrEmptyResponse is wrapped by Error when the backend answered without a
// usable payload.
var ErrEmptyResponse = errors.New("empty response")

// Client abstracts the generative backend so tests can supply a fake.
type Client interface {
	// Outline asks for a paper outline on topic. The text is expected to hold
	// a JSON object; citations come from search grounding when enabled.
	Outline(ctx context.Context, topic string) (Response, error)

	// SectionContent asks for the prose of one section, with the paper title
	// and abstract as context.
	SectionContent(ctx context.Context, paperTitle, sectionTitle, abstract string) (Response, error)

	// SectionImage asks for an illustration for prompt.
	SectionImage(ctx context.Context, prompt string) (Image, error)
}

// Response is a text payload plus any citations surfaced with it.
type Response struct {
	Text      string
	Citations []types.Citation
}

// Image is raw image bytes and their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Error reports a failed backend call: transport failure, empty or
// malformed response, or a rejection by the backend.
type Error struct {
	Op    string
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request (model %s): %v", e.Op, e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns the Client for cfg.Provider. cfg is read once; the returned
// client may be shared by concurrent jobs.
func New(ctx context.Context, cfg types.AIConfig, logger *zap.Logger) (Client, error) {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case types.ProviderGemini:
		return NewGemini(ctx, cfg, logger)
	case types.ProviderOpenAI:
		return NewOpenAI(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q (want gemini or openai)", cfg.Provider)
	}
}
