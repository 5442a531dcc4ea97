package main

import (
	"context"
	"fmt"

	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the default config file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlainln("✓ Config file created: %s", path)
	r.writePlainln("Edit it to point at your MixView backend, then run 'mixview auth login'.")
	return nil
}

// ConfigShow prints the effective configuration.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") {
		return r.writeJSON(r.config, true)
	}

	source := r.configPath
	if source == "" {
		source = "built-in defaults"
	}

	sessionDir, err := r.config.SessionDir()
	if err != nil {
		sessionDir = r.config.Session.Dir
	}

	r.writePlainHeader("Configuration")
	r.writePlain("Source:       %s\n\n", source)
	r.writePlain("Backend URL:  %s\n", r.config.Backend.URL)
	r.writePlain("Timeout:      %ds\n", r.config.Backend.TimeoutSeconds)
	r.writePlain("Rate limit:   %.1f req/s\n", r.config.Backend.RateLimitRPS)
	r.writePlain("Relay:        %s\n", r.config.RelayAddr())
	r.writePlain("Database:     %s\n", r.config.Database.Path)
	r.writePlain("Sessions:     %s\n", sessionDir)
	r.writePlain("Search limit: %d\n", r.config.Search.Limit)
	return nil
}

// ConfigSetURL points the client at a different backend and saves the config.
func (r *Runner) ConfigSetURL(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: a backend URL is required", shared.ErrMissingArgument)
	}

	r.config.Backend.URL = url

	path := r.configPath
	if path == "" {
		path = "config.toml"
	}
	if err := shared.SaveConfig(r.config, path); err != nil {
		return err
	}

	r.logger.Info("backend URL updated", "url", url, "path", path)
	r.writePlainln("✓ Backend URL set to %s", url)
	return nil
}

// configCommand manages the local configuration file
func configCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}
	}

	return &cli.Command{
		Name:  "config",
		Usage: "Manage the mixview configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a default config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Flags: []cli.Flag{
					jsonFlag(),
				},
				Action: r.ConfigShow,
			},
			{
				Name:  "set-url",
				Usage: "Point the client at a different backend",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Action: r.ConfigSetURL,
			},
		},
	}
}
