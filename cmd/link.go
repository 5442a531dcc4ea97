package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/keys"
	"github.com/mixview/mixview/internal/setup"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// watchLinkProgress renders link progress updates until the channel closes.
func (r *Runner) watchLinkProgress(progressCh <-chan setup.ProgressUpdate) {
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case setup.Intro:
				r.writePlain("→ %s\n", update.Message)
			case setup.Credentials:
				r.writePlain("\n🔑 %s\n", update.Message)
			case setup.APIKey:
				r.writePlain("📝 %s\n", update.Message)
			case setup.Testing:
				r.writePlain("🔍 %s\n", update.Message)
			case setup.Connected:
				r.writePlain("✓ %s\n", update.Message)
			case setup.Failed:
				r.writePlain("✗ %s\n", update.Message)
			}
		}
	}()
}

// LinkSpotify runs the browser-based Spotify OAuth link flow.
func (r *Runner) LinkSpotify(ctx context.Context, cmd *cli.Command) error {
	noBrowser := cmd.Bool("no-browser")

	r.logger.Info("linking spotify", "relay", r.config.RelayAddr())
	r.writePlain("Linking Spotify...\n\n")

	progressCh := make(chan setup.ProgressUpdate, 50)
	r.watchLinkProgress(progressCh)

	result, err := r.orchestrator.LinkSpotify(ctx, progressCh, noBrowser)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainln("✓ Spotify linked: %s", result.Message)
	return nil
}

// LinkLastfm stores and tests a Last.fm API key.
func (r *Runner) LinkLastfm(ctx context.Context, cmd *cli.Command) error {
	return r.linkKey(ctx, api.ServiceLastfm, cmd.String("api-key"), cmd.Bool("verify"))
}

// LinkDiscogs stores and tests a Discogs personal access token.
func (r *Runner) LinkDiscogs(ctx context.Context, cmd *cli.Command) error {
	return r.linkKey(ctx, api.ServiceDiscogs, cmd.String("token"), cmd.Bool("verify"))
}

// LinkYouTube stores and tests a YouTube Data API key.
func (r *Runner) LinkYouTube(ctx context.Context, cmd *cli.Command) error {
	return r.linkKey(ctx, api.ServiceYouTube, cmd.String("api-key"), cmd.Bool("verify"))
}

// linkKey runs the key-based link flow: format check, store, test.
func (r *Runner) linkKey(ctx context.Context, service, secret string, verify bool) error {
	if secret == "" {
		return fmt.Errorf("%w: a credential is required, see 'mixview services help %s'", shared.ErrMissingCredentials, service)
	}

	r.logger.Info("linking service", "service", service, "verify", verify)
	r.writePlain("Linking %s...\n\n", service)

	progressCh := make(chan setup.ProgressUpdate, 50)
	r.watchLinkProgress(progressCh)

	result, err := r.orchestrator.LinkAPIKey(ctx, progressCh, service, secret, verify)
	close(progressCh)

	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			r.writePlainln("Hint: %s", keys.FormatHint(service))
		}
		return err
	}

	r.writePlainln("✓ %s linked: %s", service, result.Message)
	return nil
}

// Unlink removes stored credentials for one service, or all of them.
func (r *Runner) Unlink(ctx context.Context, cmd *cli.Command) error {
	all := cmd.Bool("all")
	service := cmd.StringArg("service")

	if all {
		r.logger.Info("removing all credentials")
		resp, err := r.client.RemoveAllCredentials(ctx)
		if err != nil {
			return err
		}
		r.writePlain("✓ %s\n", resp.Message)
		return nil
	}

	if service == "" {
		return fmt.Errorf("%w: a service name or --all is required", shared.ErrMissingArgument)
	}
	if !api.KnownService(service) {
		return fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	r.logger.Info("removing credentials", "service", service)

	resp, err := r.client.RemoveCredentials(ctx, service)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", resp.Message)
	return nil
}

// linkCommand handles credential linking for every supported service
func linkCommand(r *Runner) *cli.Command {
	verifyFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "verify",
			Usage: "Probe the provider directly before storing",
		}
	}

	return &cli.Command{
		Name:  "link",
		Usage: "Link a music service to your account",
		Commands: []*cli.Command{
			{
				Name:  "spotify",
				Usage: "Link Spotify through the browser OAuth flow",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.LinkSpotify,
			},
			{
				Name:  "lastfm",
				Usage: "Link Last.fm with an API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-key",
						Aliases: []string{"k"},
						Usage:   "Last.fm API key",
					},
					verifyFlag(),
				},
				Action: r.LinkLastfm,
			},
			{
				Name:  "discogs",
				Usage: "Link Discogs with a personal access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "token",
						Aliases: []string{"t"},
						Usage:   "Discogs personal access token",
					},
					verifyFlag(),
				},
				Action: r.LinkDiscogs,
			},
			{
				Name:    "youtube",
				Aliases: []string{"yt"},
				Usage:   "Link YouTube with a Data API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-key",
						Aliases: []string{"k"},
						Usage:   "YouTube Data API v3 key",
					},
					verifyFlag(),
				},
				Action: r.LinkYouTube,
			},
		},
	}
}

// unlinkCommand removes stored credentials
func unlinkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "unlink",
		Usage: "Remove stored credentials for a service",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "service",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Remove credentials for every service",
			},
		},
		Action: r.Unlink,
	}
}
