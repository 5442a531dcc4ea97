package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/shared"
	"github.com/mixview/mixview/internal/vault"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if url := os.Getenv("MIXVIEW_BACKEND_URL"); url != "" {
		config.Backend.URL = url
	}

	if lvl := os.Getenv("MIXVIEW_LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			shared.SetLogLevel(logger, parsed)
		} else {
			logger.Warn("unknown log level", "value", lvl)
		}
	}

	var httpClient *http.Client
	if config.Backend.TimeoutSeconds > 0 {
		httpClient = &http.Client{Timeout: time.Duration(config.Backend.TimeoutSeconds) * time.Second}
	}
	client := api.NewClient(config.Backend.URL, httpClient)
	client.SetRateLimit(config.Backend.RateLimitRPS)

	sessionDir, err := config.SessionDir()
	if err != nil {
		logger.Fatalf("failed to resolve session directory: %v", err)
	}
	sessions := vault.NewVault(sessionDir, os.Getenv("MIXVIEW_VAULT_KEY"))

	if session, err := sessions.Load(); err == nil {
		client.SetToken(session.Token)
	} else if !errors.Is(err, shared.ErrNoSession) {
		logger.Warn("failed to restore session", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Vault:      sessions,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "mixview",
		Usage:    "Link music services and explore related content through the MixView backend",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
