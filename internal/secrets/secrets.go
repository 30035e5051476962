// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key name and the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/pkg/types"
)

// Key files read from the secrets directory.
const (
	GeminiAPIKey = "gemini-api-key"
	OpenAIAPIKey = "openai-api-key"
	S3AccessKey  = "s3-access-key"
	S3SecretKey  = "s3-secret-key"
)

// Set maps key names to values.
type Set map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Set. Unreadable files are logged and
// skipped.
func Load(dir string, logger *zap.Logger) (Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := Set{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Apply fills credentials that cfg leaves empty. Values already set, for
// example from the config file or environment, take precedence. The API key
// is chosen to match the configured provider.
func (s Set) Apply(cfg *types.Config) {
	ai := &cfg.Generation.AIConfig
	if ai.APIKey == "" {
		switch ai.Provider {
		case types.ProviderOpenAI:
			ai.APIKey = s[OpenAIAPIKey]
		default:
			ai.APIKey = s[GeminiAPIKey]
		}
	}
	s3 := &cfg.Images.S3
	if s3.AccessKey == "" {
		s3.AccessKey = s[S3AccessKey]
	}
	if s3.SecretKey == "" {
		s3.SecretKey = s[S3SecretKey]
	}
}
