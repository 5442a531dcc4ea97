package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupStatus shows how far setup has come.
//
// With --public the unauthenticated endpoint is used, which only reports
// whether the server itself still needs configuration.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	public := cmd.Bool("public")
	useJSON := cmd.Bool("json")

	if public {
		status, err := r.client.SetupStatusPublic(ctx)
		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(status, true)
		}

		if status.RequiresSetup {
			r.writePlain("⚠ Server setup required: %s\n", status.Reason)
		} else {
			r.writePlain("✓ Server is configured\n")
		}
		if len(status.ServicesConfigured) > 0 {
			r.writePlain("Server-side services: %s\n", strings.Join(status.ServicesConfigured, ", "))
		}
		return nil
	}

	agg, err := r.orchestrator.Status(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(agg, true)
	}

	r.writePlainHeader("Setup Status")
	r.writePlain("Progress: %.0f%% (%d of %d services)\n\n", agg.Completion, len(agg.Connected), len(agg.Required))
	for _, s := range agg.Connected {
		r.writePlain("  ✓ %s\n", s)
	}
	for _, s := range agg.Missing {
		r.writePlain("  ✗ %s\n", s)
	}
	if agg.Complete {
		r.writePlain("\n✓ Setup is marked complete\n")
	} else {
		r.writePlain("\nRun 'mixview setup' to link the missing services.\n")
	}

	return nil
}

// SetupProgress shows the backend's wizard progress tracker.
func (r *Runner) SetupProgress(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	progress, err := r.client.SetupProgress(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(progress, true)
	}

	r.writePlain("Current step: %s\n", progress.CurrentStep)
	r.writePlain("Completion: %.0f%%\n", progress.CompletionPercentage)
	if len(progress.ConfiguredServices) > 0 {
		r.writePlain("Configured: %s\n", strings.Join(progress.ConfiguredServices, ", "))
	}
	if progress.SetupCompleted {
		r.writePlain("✓ Setup completed\n")
	}

	r.renderFlow(ctx, progress)

	return nil
}

// renderFlow prints the wizard step list with the current step marked. The
// flow comes from a separate endpoint, so a fetch failure only drops the
// listing rather than failing the command.
func (r *Runner) renderFlow(ctx context.Context, progress *api.SetupProgressResponse) {
	cfg, err := r.client.SetupConfiguration(ctx)
	if err != nil {
		r.logger.Warn("failed to fetch setup flow", "error", err)
		return
	}
	if len(cfg.SetupFlow.Steps) == 0 {
		return
	}

	r.writePlain("\nFlow:\n")
	done := true
	for _, step := range cfg.SetupFlow.Steps {
		if step.ID == progress.CurrentStep && !progress.SetupCompleted {
			done = false
			r.writePlain("  → %s\n", step.Title)
			continue
		}
		if done {
			r.writePlain("  ✓ %s\n", step.Title)
		} else {
			r.writePlain("    %s\n", step.Title)
		}
	}
}

// SetupComplete marks setup finished once at least one service is linked.
func (r *Runner) SetupComplete(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("completing setup")

	resp, err := r.orchestrator.Complete(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", resp.Message)
	if len(resp.ConfiguredServices) > 0 {
		r.writePlain("Configured services: %s\n", strings.Join(resp.ConfiguredServices, ", "))
	}
	return nil
}

// SetupReset clears the setup state on the backend.
func (r *Runner) SetupReset(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("resetting setup")

	resp, err := r.client.ResetSetup(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", resp.Message)
	r.writePlain("Run 'mixview setup' to start over.\n")
	return nil
}

// SetupServerConfig shows or stores server-wide OAuth app credentials.
//
// Without credential flags the current configuration state is shown. With
// --client-id and --client-secret the credentials are stored; --verify
// probes them against the provider first.
func (r *Runner) SetupServerConfig(ctx context.Context, cmd *cli.Command) error {
	service := cmd.StringArg("service")
	clientID := cmd.String("client-id")
	clientSecret := cmd.String("client-secret")
	verify := cmd.Bool("verify")
	remove := cmd.Bool("delete")

	if service == "" {
		service = api.ServiceSpotify
	}

	if remove {
		resp, err := r.client.DeleteServerConfig(ctx, service)
		if err != nil {
			return err
		}
		r.writePlain("✓ %s\n", resp.Message)
		return nil
	}

	if clientID == "" && clientSecret == "" {
		cfg, err := r.client.ServerConfig(ctx, service)
		if err != nil {
			return err
		}

		if !cfg.RequiresServerConfig {
			r.writePlain("%s does not need server-side configuration.\n", cfg.ServiceName)
			return nil
		}
		if cfg.IsConfigured {
			r.writePlain("✓ %s is configured (%s)\n", cfg.ServiceName, strings.Join(cfg.ConfiguredKeys, ", "))
		} else {
			r.writePlain("✗ %s is not configured\n", cfg.ServiceName)
			r.writePlain("Required keys: %s\n", strings.Join(cfg.RequiredKeys, ", "))
		}
		return nil
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: both --client-id and --client-secret are required", shared.ErrMissingArgument)
	}

	if verify && service == api.ServiceSpotify {
		r.writePlain("🔍 Verifying credentials with Spotify...\n")
		if err := r.prober.SpotifyServerCreds(ctx, clientID, clientSecret); err != nil {
			return err
		}
		r.writePlain("✓ Credentials accepted\n")
	}

	resp, err := r.client.StoreServerConfig(ctx, service, map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", resp.Message)
	return nil
}

// SetupInitDB initializes the local cache database and runs migrations.
func (r *Runner) SetupInitDB(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Info("applied migrations", "count", applied)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// setupCommand drives setup: the wizard by default, plus status and admin subcommands
func setupCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}
	}

	return &cli.Command{
		Name:    "setup",
		Aliases: []string{"tui"},
		Usage:   "Run the interactive setup wizard",
		Action:  r.Wizard,
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show setup progress",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Use the unauthenticated status endpoint",
					},
					jsonFlag(),
				},
				Action: r.SetupStatus,
			},
			{
				Name:   "progress",
				Usage:  "Show the backend's wizard progress tracker",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SetupProgress,
			},
			{
				Name:   "complete",
				Usage:  "Mark setup finished",
				Action: r.SetupComplete,
			},
			{
				Name:   "reset",
				Usage:  "Reset setup state on the backend",
				Action: r.SetupReset,
			},
			{
				Name:  "server-config",
				Usage: "Show or store server-wide OAuth app credentials",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "service",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "OAuth application client id",
					},
					&cli.StringFlag{
						Name:  "client-secret",
						Usage: "OAuth application client secret",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Probe the credentials against the provider before storing",
					},
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "Remove the stored server configuration",
					},
				},
				Action: r.SetupServerConfig,
			},
			{
				Name:  "init-db",
				Usage: "Initialize the local cache database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupInitDB,
			},
		},
	}
}
