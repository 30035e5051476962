// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/internal/httputil"
	"github.com/pdiddy/paperforge/pkg/types"
)

// OpenAI implements Client with the openai-go SDK. Chat completions carry no
// grounding metadata, so Outline and SectionContent never return citations.
type OpenAI struct {
	client     openai.Client
	textModel  string
	imageModel string
	log        *zap.Logger
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI client from cfg. The SDK's own retries are
// disabled and the transport does not retry; the pipeline decides whether a
// failed call is attempted again.
func NewOpenAI(cfg types.AIConfig, logger *zap.Logger) (*OpenAI, error) {
	cfg = cfg.WithDefaults()
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set generation.api_key or .secrets/openai-api-key")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httputil.NewClient(0, logger)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		log:        logger.Named("openai"),
	}, nil
}

// Outline implements Client.
func (o *OpenAI) Outline(ctx context.Context, topic string) (Response, error) {
	return o.complete(ctx, OpOutline, OutlinePrompt(topic))
}

// SectionContent implements Client.
func (o *OpenAI) SectionContent(ctx context.Context, paperTitle, sectionTitle, abstract string) (Response, error) {
	return o.complete(ctx, OpContent, SectionPrompt(paperTitle, sectionTitle, abstract))
}

// SectionImage implements Client.
func (o *OpenAI) SectionImage(ctx context.Context, prompt string) (Image, error) {
	o.log.Debug("request", zap.String("op", OpImage), zap.String("model", o.imageModel), zap.Int("bytes", len(prompt)))

	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         ImagePrompt(prompt),
		Model:          openai.ImageModel(o.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return Image{}, &Error{Op: OpImage, Model: o.imageModel, Err: err}
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Image{}, &Error{Op: OpImage, Model: o.imageModel, Err: ErrEmptyResponse}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, &Error{Op: OpImage, Model: o.imageModel, Err: fmt.Errorf("decoding image payload: %w", err)}
	}
	return Image{Data: data, MIMEType: "image/png"}, nil
}

func (o *OpenAI) complete(ctx context.Context, op, prompt string) (Response, error) {
	o.log.Debug("request", zap.String("op", op), zap.String("model", o.textModel), zap.Int("bytes", len(prompt)))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a meticulous academic researcher and writer."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return Response{}, &Error{Op: op, Model: o.textModel, Err: err}
	}
	if len(resp.Choices) == 0 {
		return Response{}, &Error{Op: op, Model: o.textModel, Err: ErrEmptyResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Response{}, &Error{Op: op, Model: o.textModel, Err: ErrEmptyResponse}
	}
	return Response{Text: text}, nil
}
