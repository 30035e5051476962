// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paperforge/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  gk_abc123  \n")
				writeFile(t, dir, S3AccessKey, "AKIA0001")
				writeFile(t, dir, S3SecretKey, "shh\n")
				return dir
			},
			want: Set{
				GeminiAPIKey: "gk_abc123",
				S3AccessKey:  "AKIA0001",
				S3SecretKey:  "shh",
			},
		},
		{
			name: "missing directory yields empty set",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Set{},
		},
		{
			name: "skips empty and whitespace-only files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIAPIKey, "sk-valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Set{OpenAIAPIKey: "sk-valid"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiAPIKey, "gk_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Set{GeminiAPIKey: "gk_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, GeminiAPIKey, "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, Set{GeminiAPIKey: "value123"}, got)

	warn := logs.FilterMessage("could not read secret").All()
	require.Len(t, warn, 1)
	assert.Equal(t, "bad-key", warn[0].ContextMap()["key"])
}

func TestApply(t *testing.T) {
	set := Set{
		GeminiAPIKey: "gk",
		OpenAIAPIKey: "sk",
		S3AccessKey:  "ak",
		S3SecretKey:  "sec",
	}

	tests := []struct {
		name       string
		cfg        types.Config
		wantAPIKey string
		wantAccess string
	}{
		{
			name:       "gemini is the default provider",
			wantAPIKey: "gk",
			wantAccess: "ak",
		},
		{
			name:       "openai provider picks the openai key",
			cfg:        types.Config{Generation: types.GenerationConfig{AIConfig: types.AIConfig{Provider: types.ProviderOpenAI}}},
			wantAPIKey: "sk",
			wantAccess: "ak",
		},
		{
			name: "explicit values win",
			cfg: types.Config{
				Generation: types.GenerationConfig{AIConfig: types.AIConfig{APIKey: "from-env"}},
				Images:     types.ImageStoreConfig{S3: types.S3Config{AccessKey: "from-file"}},
			},
			wantAPIKey: "from-env",
			wantAccess: "from-file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			set.Apply(&cfg)
			assert.Equal(t, tt.wantAPIKey, cfg.Generation.APIKey)
			assert.Equal(t, tt.wantAccess, cfg.Images.S3.AccessKey)
			assert.Equal(t, "sec", cfg.Images.S3.SecretKey)
		})
	}
}

func TestApplyEmptySet(t *testing.T) {
	var cfg types.Config
	Set{}.Apply(&cfg)
	assert.Empty(t, cfg.Generation.APIKey)
	assert.Empty(t, cfg.Images.S3.AccessKey)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
