// Package main provides the brandvoice CLI: the HTTP API server and a local
// client for analyzing, generating and managing saved tone profiles.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/brand-voice/internal/config"
	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/llm"
	"github.com/jonathan/brand-voice/internal/logging"
	"github.com/jonathan/brand-voice/internal/profiles"
)

// app holds global flag values and the state resolved from them before a subcommand runs
type app struct {
	configPath   string
	storeBackend string
	verbose      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "brandvoice",
		Short: "Brand voice analyzer",
		Long: "brandvoice derives a structured tone profile from sample writing (pasted text, TXT, DOCX or PDF) " +
			"and generates short content in a saved voice. Run 'serve' for the HTTP API.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&a.storeBackend, "store", "", "Profile store backend: file or sqlite (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newGenerateCmd(a),
		newProfilesCmd(a),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup resolves configuration and the logger once flags are parsed
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, os.Getenv)
	if err != nil {
		return err
	}
	if a.storeBackend != "" {
		cfg.Store.Backend = a.storeBackend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		File:        cfg.Log.File,
		Development: cfg.Log.Development || a.verbose,
		Console:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newClient builds the configured LLM client
func (a *app) newClient(ctx context.Context) (llm.Client, error) {
	provider, err := llm.ParseProvider(a.cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	llmCfg := llm.DefaultConfigFor(provider)
	if a.cfg.LLM.Model != "" {
		llmCfg = llmCfg.WithModel(a.cfg.LLM.Model)
	}
	if a.cfg.LLM.BaseURL != "" {
		llmCfg.BaseURL = a.cfg.LLM.BaseURL
	}
	if d := a.cfg.LLMTimeout(); d > 0 {
		llmCfg.Timeout = d
	}

	if a.cfg.LLM.APIKey == "" && provider != llm.ProviderMock {
		return nil, fmt.Errorf("API key is required for %s (set %s or llm.api_key in the config file)",
			provider, config.APIKeyEnv(string(provider)))
	}

	client, err := llm.NewClient(ctx, llmCfg, a.cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.logger.Debug("llm client ready",
		zap.String("provider", string(provider)),
		zap.String("model", client.Model()))
	return client, nil
}

// newExtractor builds an Extractor with the configured limits
func (a *app) newExtractor() *extract.Extractor {
	return extract.New(extract.Options{
		MaxFileSize: a.cfg.Extract.MaxFileBytes,
		Concurrency: a.cfg.Extract.Concurrency,
	}, a.logger)
}

// openStore opens the configured profile backend. The returned close func is never nil.
func (a *app) openStore() (*profiles.Store, func() error, error) {
	switch a.cfg.Store.Backend {
	case config.StoreSQLite:
		backend, err := profiles.OpenSQLite(a.cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open profile database: %w", err)
		}
		a.logger.Debug("using sqlite profile store", zap.String("path", a.cfg.Store.SQLitePath))
		return profiles.NewStore(backend), backend.Close, nil
	default:
		a.logger.Debug("using file profile store", zap.String("dir", a.cfg.Store.Dir))
		return profiles.NewStore(profiles.NewFileBackend(a.cfg.Store.Dir)), func() error { return nil }, nil
	}
}
