package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/smartresume/internal/ai"
	"github.com/amishk599/smartresume/internal/config"
	"github.com/amishk599/smartresume/internal/form"
	"github.com/amishk599/smartresume/internal/prompt"
	"github.com/amishk599/smartresume/internal/retry"
	"github.com/amishk599/smartresume/internal/session"
	"github.com/amishk599/smartresume/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "smartresume",
	Short: "AI-assisted resume section outlines",
	Long:  "SmartResume collects a job title, experience level and skills, and asks a hosted language model for a resume section outline.",
	// Default to `serve` so that `smartresume` with no args starts the web form.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: SMARTRESUME_CONFIG env var or ./smartresume.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

const defaultConfigFile = "smartresume.yaml"

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > SMARTRESUME_CONFIG env var > "./smartresume.yaml"
// if present > defaults and environment only.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("SMARTRESUME_CONFIG"); env != "" {
			path = env
		} else if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", defaultConfigFile, err)
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupProvider builds the configured model backend, wrapped in retries when
// inference.max_retries is set. The returned func releases provider resources.
func setupProvider(ctx context.Context, cfg *config.InferenceConfig, logger *slog.Logger) (ai.LLMProvider, func() error, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	closeFn := func() error { return nil }

	var provider ai.LLMProvider
	switch cfg.Provider {
	case "openai":
		provider = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, httpClient)
	case "anthropic":
		provider = ai.NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, httpClient)
	case "gemini":
		gp, err := ai.NewGeminiProvider(ctx, cfg.APIKey)
		if err != nil {
			return nil, nil, err
		}
		provider, closeFn = gp, gp.Close
	default:
		provider = ai.NewHuggingFaceProvider(cfg.BaseURL, cfg.APIKey, httpClient)
	}
	logger.Info("inference provider configured",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
	)

	if cfg.MaxRetries > 0 {
		provider = retry.NewRetryProvider(provider, cfg.MaxRetries, 2*time.Second, logger)
		logger.Info("inference retries enabled", "max_retries", cfg.MaxRetries)
	}
	return provider, closeFn, nil
}

// setupController wires the prompt, inference client and form handlers.
func setupController(ctx context.Context, cfg *config.InferenceConfig, logger *slog.Logger) (*form.Controller, func() error, error) {
	tmpl := prompt.ResumeSectionsTemplate
	if cfg.PromptFile != "" {
		t, err := prompt.LoadTemplate(cfg.PromptFile)
		if err != nil {
			return nil, nil, &config.ConfigError{Field: "inference.prompt_file", Message: err.Error()}
		}
		tmpl = t
	}

	provider, closeFn, err := setupProvider(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	client, err := ai.NewClient(cfg, provider, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return form.NewController(prompt.NewBuilder(tmpl), client, logger), closeFn, nil
}

func openStore(ctx context.Context, cfg *config.SessionConfig) (session.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return store.NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		return store.NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
	default:
		return store.NewMemoryStore(), nil
	}
}
