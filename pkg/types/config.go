// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies the generative backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Default model identifiers per provider.
const (
	DefaultGeminiTextModel  = "gemini-2.5-flash"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
	DefaultOpenAITextModel  = "gpt-4o"
	DefaultOpenAIImageModel = "dall-e-3"
)

// AIConfig holds settings for the generative backend. The same settings are
// shared read-only by every job in the process.
type AIConfig struct {
	// Provider selects the backend: gemini (default) or openai.
	Provider Provider `json:"provider" yaml:"provider"`

	// TextModel is the model used for outline and section content requests.
	TextModel string `json:"text_model" yaml:"text_model"`

	// ImageModel is the model used for section illustrations.
	ImageModel string `json:"image_model" yaml:"image_model"`

	// APIKey is the authentication key for the backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend endpoint (proxies, tests).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Grounding enables search grounding on outline and content requests so
	// citation metadata is returned (default true).
	Grounding bool `json:"grounding" yaml:"grounding"`
}

// WithDefaults fills unset fields with the provider defaults.
func (c AIConfig) WithDefaults() AIConfig {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.TextModel == "" {
			c.TextModel = DefaultOpenAITextModel
		}
		if c.ImageModel == "" {
			c.ImageModel = DefaultOpenAIImageModel
		}
	default:
		if c.TextModel == "" {
			c.TextModel = DefaultGeminiTextModel
		}
		if c.ImageModel == "" {
			c.ImageModel = DefaultGeminiImageModel
		}
	}
	return c
}

// GenerationConfig holds settings for the generation pipeline.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// MaxRetries is the number of extra attempts for a failed backend call.
	// Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestDelay is the pause between consecutive backend calls of one job,
	// for rate-limited deployments (default 0).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// ImageBackend identifies where generated illustrations are stored.
type ImageBackend string

const (
	ImageBackendDataURL ImageBackend = "dataurl"
	ImageBackendDir     ImageBackend = "dir"
	ImageBackendS3      ImageBackend = "s3"
)

// S3Config holds settings for an S3-compatible object store.
type S3Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`

	// URLExpiry is the lifetime of presigned image URLs (default 7 days).
	URLExpiry time.Duration `json:"url_expiry" yaml:"url_expiry"`
}

// ImageStoreConfig selects and configures the illustration store.
type ImageStoreConfig struct {
	// Backend is dataurl (default), dir, or s3.
	Backend ImageBackend `json:"backend" yaml:"backend"`

	// Dir is the base directory for the dir backend.
	Dir string `json:"dir" yaml:"dir"`

	S3 S3Config `json:"s3" yaml:"s3"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// DBPath is the SQLite file recording job outcomes. Empty disables the ledger.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// OutputFormat selects how a finished document is written.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputHTML     OutputFormat = "html"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
)

// Config groups all settings for the paperforge tool.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Images     ImageStoreConfig `json:"images" yaml:"images"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
