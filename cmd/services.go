package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/keys"
	"github.com/mixview/mixview/internal/setup"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// ServicesStatus shows the connection state of every service.
func (r *Runner) ServicesStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	r.logger.Info("fetching service status")

	resp, err := r.client.ServicesStatus(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(resp, true)
	}

	r.writePlainHeader("Service Connections")
	if len(resp.Services) == 0 {
		r.writePlain("No services reported. Run 'mixview setup' to get started.\n")
		return nil
	}

	for _, s := range resp.Services {
		if s.IsConnected {
			r.writePlain("✓ %-8s connected", s.ServiceName)
			if s.CredentialType != "" {
				r.writePlain(" (%s)", s.CredentialType)
			}
			if s.ConnectedAt != "" {
				r.writePlain(" since %s", s.ConnectedAt)
			}
			r.writePlain("\n")
			if s.ExpiresAt != "" {
				r.writePlain("  Token expires: %s\n", s.ExpiresAt)
			}
		} else {
			r.writePlain("✗ %-8s not linked\n", s.ServiceName)
		}
	}

	return nil
}

// ServicesTest runs the backend connection test for one service or all of them.
func (r *Runner) ServicesTest(ctx context.Context, cmd *cli.Command) error {
	service := cmd.StringArg("service")
	all := cmd.Bool("all")
	useJSON := cmd.Bool("json")

	if !all && service == "" {
		return fmt.Errorf("%w: a service name or --all is required", shared.ErrMissingArgument)
	}

	progressCh := make(chan setup.ProgressUpdate, 50)
	if !useJSON {
		r.watchLinkProgress(progressCh)
	}

	if all {
		r.logger.Info("testing all services")

		resp, err := r.orchestrator.TestAll(ctx, progressCh)
		close(progressCh)
		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(resp, true)
		}

		r.writePlainln("═══════════════════════════════════════")
		r.writePlain("Test Results\n")
		r.writePlain("═══════════════════════════════════════\n")
		r.writePlain("Configured: %d/%d services\n", resp.Summary.ConfiguredServices, resp.Summary.TotalServices)
		r.writePlain("Successful: %d\n", resp.Summary.SuccessfulTests)
		if resp.Summary.AllWorking {
			r.writePlain("✓ All configured services are working\n")
		} else {
			r.writePlain("⚠ Some services failed, see above\n")
		}
		return nil
	}

	r.logger.Info("testing service", "service", service)

	result, err := r.orchestrator.TestService(ctx, progressCh, service)
	close(progressCh)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, true)
	}
	return nil
}

// ServicesHelp prints the backend's setup guide for a service.
func (r *Runner) ServicesHelp(ctx context.Context, cmd *cli.Command) error {
	service := cmd.StringArg("service")
	if service == "" {
		return fmt.Errorf("%w: a service name is required", shared.ErrMissingArgument)
	}
	if !api.KnownService(service) {
		return fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	guide, err := r.client.ServiceGuide(ctx, service)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Linking %s", guide.Service))
	r.writePlain("Auth type: %s\n\n", guide.AuthType)
	for i, step := range guide.Instructions {
		r.writePlain("%d. %s\n", i+1, step)
	}
	if guide.SetupURL != "" {
		r.writePlain("\nGet credentials at: %s\n", guide.SetupURL)
	}

	if service != api.ServiceSpotify {
		if hint := keys.FormatHint(service); hint != "" {
			r.writePlain("\n%s\n", hint)
		}
	}

	return nil
}

// ServicesAvailable lists the services the backend can link.
func (r *Runner) ServicesAvailable(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	services, err := r.client.AvailableServices(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(services, true)
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	r.writePlain("Available services:\n\n")
	for _, name := range names {
		svc := services[name]
		marker := "○"
		if svc.Configured {
			marker = "●"
		}
		r.writePlain("%s %s (%s)\n", marker, name, svc.Type)
		if svc.Description != "" {
			r.writePlain("  %s\n", svc.Description)
		}
	}

	return nil
}

// servicesCommand handles service connection status, tests, and guides
func servicesCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}
	}

	return &cli.Command{
		Name:  "services",
		Usage: "Inspect and test linked services",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show connection state for every service",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ServicesStatus,
			},
			{
				Name:  "test",
				Usage: "Run the backend connection test",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "service",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Test every configured service",
					},
					jsonFlag(),
				},
				Action: r.ServicesTest,
			},
			{
				Name:  "help",
				Usage: "Show the setup guide for a service",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "service",
					},
				},
				Action: r.ServicesHelp,
			},
			{
				Name:   "available",
				Usage:  "List services the backend can link",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ServicesAvailable,
			},
		},
	}
}
