// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperforge CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/paperforge/internal/genclient"
	"github.com/pdiddy/paperforge/internal/imagestore"
	"github.com/pdiddy/paperforge/internal/pipeline"
	"github.com/pdiddy/paperforge/internal/runlog"
	"github.com/pdiddy/paperforge/internal/secrets"
	"github.com/pdiddy/paperforge/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Set

	// logger is built from --verbose before any command runs.
	logger = zap.NewNop()
)

// rootCmd is the base command for the paperforge CLI.
var rootCmd = &cobra.Command{
	Use:   "paperforge",
	Short: "Generate illustrated, cited research papers from a topic",
	Long: `paperforge turns a research topic into a structured paper. A grounded
model drafts an outline and researches every section in turn, then an image
model illustrates the sections that ask for it. Sources returned by the
model are collected into a deduplicated reference list.

Run one paper with generate, many with batch, or expose jobs to an MCP
client with serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperforge.yaml or ~/.config/paperforge/paperforge.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline transitions and backend calls")

	rootCmd.PersistentFlags().String("provider", "", "generative backend: gemini or openai")
	rootCmd.PersistentFlags().String("text-model", "", "model for outline and section content")
	rootCmd.PersistentFlags().String("image-model", "", "model for section illustrations")
	rootCmd.PersistentFlags().Int("max-retries", 3, "extra attempts for a failed model request")
	rootCmd.PersistentFlags().Duration("request-delay", 0, "pause between consecutive model requests of one job")
	rootCmd.PersistentFlags().String("images", "", "illustration store: dataurl, dir, or s3")
	rootCmd.PersistentFlags().String("history-db", "", "SQLite file recording job outcomes (empty disables)")

	for key, flag := range map[string]string{
		"provider":        "provider",
		"text_model":      "text-model",
		"image_model":     "image-model",
		"max_retries":     "max-retries",
		"request_delay":   "request-delay",
		"images.backend":  "images",
		"history.db_path": "history-db",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperforge"))
		}
	}

	viper.SetDefault("grounding", true)
	viper.SetDefault("images.dir", "images")
	viper.SetDefault("images.s3.region", "us-east-1")
	viper.SetDefault("images.s3.use_ssl", true)
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("history.db_path", filepath.Join(home, ".config", "paperforge", "runs.db"))
	}

	viper.SetEnvPrefix("PAPERFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration. Precedence, highest
// first: flags, PAPERFORGE_* environment, config file, provider key
// environment (GEMINI_API_KEY, OPENAI_API_KEY), .secrets/.
func loadConfig() types.Config {
	cfg := types.Config{
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Provider:   types.Provider(viper.GetString("provider")),
				TextModel:  viper.GetString("text_model"),
				ImageModel: viper.GetString("image_model"),
				APIKey:     viper.GetString("api_key"),
				BaseURL:    viper.GetString("base_url"),
				Grounding:  viper.GetBool("grounding"),
			},
			MaxRetries:   viper.GetInt("max_retries"),
			RequestDelay: viper.GetDuration("request_delay"),
		},
		Images: types.ImageStoreConfig{
			Backend: types.ImageBackend(viper.GetString("images.backend")),
			Dir:     viper.GetString("images.dir"),
			S3: types.S3Config{
				Endpoint:  viper.GetString("images.s3.endpoint"),
				Region:    viper.GetString("images.s3.region"),
				AccessKey: viper.GetString("images.s3.access_key"),
				SecretKey: viper.GetString("images.s3.secret_key"),
				Bucket:    viper.GetString("images.s3.bucket"),
				UseSSL:    viper.GetBool("images.s3.use_ssl"),
				URLExpiry: viper.GetDuration("images.s3.url_expiry"),
			},
		},
		History: types.HistoryConfig{
			DBPath: viper.GetString("history.db_path"),
		},
	}
	cfg.Generation.AIConfig = cfg.Generation.AIConfig.WithDefaults()

	if cfg.Generation.APIKey == "" {
		switch cfg.Generation.Provider {
		case types.ProviderOpenAI:
			cfg.Generation.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			cfg.Generation.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	loadedSecrets.Apply(&cfg)
	return cfg
}

// newOrchestrator builds the backend client, image store, and orchestrator
// from cfg.
func newOrchestrator(cmd *cobra.Command, cfg types.Config) (*pipeline.Orchestrator, error) {
	client, err := genclient.New(cmd.Context(), cfg.Generation.AIConfig, logger)
	if err != nil {
		return nil, err
	}
	images, err := imagestore.New(cfg.Images)
	if err != nil {
		return nil, err
	}
	logger.Debug("orchestrator ready",
		zap.String("provider", string(cfg.Generation.Provider)),
		zap.String("text_model", cfg.Generation.TextModel),
		zap.String("image_model", cfg.Generation.ImageModel),
		zap.String("images", string(cfg.Images.Backend)))
	return pipeline.NewOrchestrator(client, images, cfg.Generation, logger), nil
}

// openLedger opens the run ledger, or returns nil when it is disabled. A
// ledger that cannot be opened is logged and skipped; it never blocks
// generation.
func openLedger(cfg types.HistoryConfig) *runlog.Store {
	if cfg.DBPath == "" {
		return nil
	}
	store, err := runlog.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("run ledger unavailable", zap.String("path", cfg.DBPath), zap.Error(err))
		return nil
	}
	return store
}

// newLogger builds a console logger on stderr. stdout is reserved for
// documents and the MCP stdio transport.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
