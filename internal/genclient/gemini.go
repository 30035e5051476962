// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/pdiddy/paperforge/internal/httputil"
	"github.com/pdiddy/paperforge/pkg/types"
)

// Gemini implements Client with the official genai SDK. Outline and content
// requests use the Google Search tool when grounding is enabled so the
// response carries grounding chunks, which become citations.
type Gemini struct {
	cli        *genai.Client
	textModel  string
	imageModel string
	grounding  bool
	log        *zap.Logger
}

var _ Client = (*Gemini)(nil)

// NewGemini creates a Gemini client from cfg. An empty APIKey lets the SDK
// fall back to the GEMINI_API_KEY / GOOGLE_API_KEY environment variables.
func NewGemini(ctx context.Context, cfg types.AIConfig, logger *zap.Logger) (*Gemini, error) {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httputil.NewClient(0, logger),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{
		cli:        cli,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		grounding:  cfg.Grounding,
		log:        logger.Named("gemini"),
	}, nil
}

// Outline implements Client.
func (g *Gemini) Outline(ctx context.Context, topic string) (Response, error) {
	return g.generateText(ctx, OpOutline, OutlinePrompt(topic))
}

// SectionContent implements Client.
func (g *Gemini) SectionContent(ctx context.Context, paperTitle, sectionTitle, abstract string) (Response, error) {
	return g.generateText(ctx, OpContent, SectionPrompt(paperTitle, sectionTitle, abstract))
}

// SectionImage implements Client.
func (g *Gemini) SectionImage(ctx context.Context, prompt string) (Image, error) {
	g.log.Debug("request", zap.String("op", OpImage), zap.String("model", g.imageModel), zap.Int("bytes", len(prompt)))

	resp, err := g.cli.Models.GenerateContent(ctx, g.imageModel, genai.Text(ImagePrompt(prompt)),
		&genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	)
	if err != nil {
		return Image{}, &Error{Op: OpImage, Model: g.imageModel, Err: err}
	}
	for _, part := range firstParts(resp) {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return Image{Data: part.InlineData.Data, MIMEType: mime}, nil
		}
	}
	return Image{}, &Error{Op: OpImage, Model: g.imageModel, Err: ErrEmptyResponse}
}

func (g *Gemini) generateText(ctx context.Context, op, prompt string) (Response, error) {
	g.log.Debug("request", zap.String("op", op), zap.String("model", g.textModel), zap.Int("bytes", len(prompt)))

	cfg := &genai.GenerateContentConfig{}
	if g.grounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), cfg)
	if err != nil {
		return Response{}, &Error{Op: op, Model: g.textModel, Err: err}
	}

	var b strings.Builder
	for _, part := range firstParts(resp) {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return Response{}, &Error{Op: op, Model: g.textModel, Err: ErrEmptyResponse}
	}
	return Response{Text: text, Citations: groundingCitations(resp)}, nil
}

// firstParts returns the content parts of the first candidate, or nil.
func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return nil
	}
	return c.Content.Parts
}

// groundingCitations collects web grounding chunks from the first candidate.
// Chunks without web metadata are skipped; validation happens downstream.
func groundingCitations(resp *genai.GenerateContentResponse) []types.Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	var out []types.Citation
	for _, chunk := range gm.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, types.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
