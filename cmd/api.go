package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: usage is 'mixview api get <path>'", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := requireSuccess(resp); err != nil {
		return err
	}

	// --json defaults to true and means compact output
	return r.printResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("POST request", "path", path)

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	resp, err := r.client.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := requireSuccess(resp); err != nil {
		return err
	}

	return r.printResponse(resp, true)
}

// printResponse writes a backend response, pretty-printing JSON bodies when
// asked and passing everything else through untouched.
func (r *Runner) printResponse(resp *api.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

func requireSuccess(resp *api.APIResponse) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Body)
	}
	return nil
}

// APIDump fetches and displays the full backend state.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Info("dumping API state")
	r.writePlain("Fetching backend state...\n\n")

	type DumpData struct {
		Health   any   `json:"health"`
		Setup    any   `json:"setup,omitempty"`
		Services any   `json:"services,omitempty"`
		Stats    any   `json:"stats,omitempty"`
		Errors   []any `json:"errors,omitempty"`
	}

	dump := DumpData{
		Errors: []any{},
	}

	// Fetch health
	r.writePlain("📊 Fetching health status...\n")
	if health, err := r.client.Health(ctx); err == nil {
		dump.Health = health
	} else {
		dump.Errors = append(dump.Errors, map[string]string{"endpoint": "/health", "error": err.Error()})
		r.logger.Warn("failed to fetch health", "error", err)
	}

	// Fetch setup state
	r.writePlain("🔧 Fetching setup state...\n")
	if status, err := r.client.SetupStatusPublic(ctx); err == nil {
		dump.Setup = status
	} else {
		dump.Errors = append(dump.Errors, map[string]string{"endpoint": "/setup/status", "error": err.Error()})
		r.logger.Warn("failed to fetch setup state", "error", err)
	}

	// Fetch service catalog
	r.writePlain("🎵 Fetching service catalog...\n")
	if services, err := r.client.AvailableServices(ctx); err == nil {
		dump.Services = services
	} else {
		dump.Errors = append(dump.Errors, map[string]string{"endpoint": "/setup/services", "error": err.Error()})
		r.logger.Warn("failed to fetch services", "error", err)
	}

	// Fetch aggregator stats, needs a session
	if r.client.Token() != "" {
		r.writePlain("📈 Fetching stats...\n")
		if stats, err := r.client.Stats(ctx); err == nil {
			dump.Stats = stats
		} else {
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": "/api/stats", "error": err.Error()})
			r.logger.Warn("failed to fetch stats", "error", err)
		}
	}

	r.writePlain("\n✓ Dump complete\n\n")

	// Save to file if requested
	if save {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	// Output to console
	return r.writeJSON(dump, pretty)
}

// APIRefresh asks the backend to recompute stored relationships for an entity.
func (r *Runner) APIRefresh(ctx context.Context, cmd *cli.Command) error {
	entityType := cmd.StringArg("entity-type")
	rawID := cmd.StringArg("id")

	if entityType == "" || rawID == "" {
		return fmt.Errorf("%w: usage is 'mixview api refresh <artist|album|track> <id>'", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("%w: id must be a number, got %q", shared.ErrInvalidArgument, rawID)
	}

	r.logger.Info("refreshing relationships", "type", entityType, "id", id)

	resp, err := r.client.Refresh(ctx, entityType, id)
	if err != nil {
		return err
	}

	r.writePlainln("✓ %s", resp.Message)
	if resp.RelatedCount > 0 {
		r.writePlain("Related entries: %d\n", resp.RelatedCount)
	}
	return nil
}

// apiCommand handles direct backend calls plus state dump and refresh
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the MixView backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Full backend state dump (health, setup, services, stats)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
			{
				Name:  "refresh",
				Usage: "Recompute stored relationships for an entity",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "entity-type",
					},
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.APIRefresh,
			},
		},
	}
}
