package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates a backend account.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	password := cmd.String("password")

	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: --password is required", shared.ErrMissingArgument)
	}

	r.logger.Info("registering account", "username", username)

	user, err := r.client.Register(ctx, username, password)
	if err != nil {
		return err
	}

	r.writePlain("✓ Account created: %s\n", user.Username)
	r.writePlain("Log in with: mixview auth login %s --password <password>\n", user.Username)
	return nil
}

// AuthLogin exchanges credentials for a token and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	password := cmd.String("password")

	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrMissingArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: --password is required", shared.ErrMissingArgument)
	}

	r.logger.Info("logging in", "username", username)

	token, err := r.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := r.saveSession(username, token); err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", username)
	r.writePlain("Session saved to %s\n", r.vault.Path())
	if r.vault.Sealed() {
		r.writePlain("Session is sealed with MIXVIEW_VAULT_KEY\n")
	}
	return nil
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("logging out")

	if err := r.clearSession(); err != nil {
		return err
	}

	return r.writePlain("✓ Logged out\n")
}

// AuthWhoami shows the account behind the current session.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	if r.client.Token() == "" {
		return fmt.Errorf("%w: no session, run 'mixview auth login' first", shared.ErrNotAuthenticated)
	}

	user, err := r.client.Me(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(user, true)
	}

	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("User ID: %d\n", user.ID)
	if user.CreatedAt != "" {
		r.writePlain("Member since: %s\n", user.CreatedAt)
	}
	return nil
}

// AuthStatus checks backend health and the current authentication state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("✓ Backend is %s\n", health.Status)
	if health.Database != "" {
		r.writePlain("Database: %s\n", health.Database)
	}

	if r.client.Token() == "" {
		r.writePlain("Authentication: ✗ Not logged in\n")
		return nil
	}

	user, err := r.client.Me(ctx)
	if err != nil {
		r.writePlain("Authentication: ✗ Session invalid or expired\n")
		return nil
	}

	r.writePlain("Authentication: ✓ Logged in as %s\n", user.Username)
	return nil
}

// FiltersList lists the account's search filters.
func (r *Runner) FiltersList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	filters, err := r.client.Filters(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(filters, true)
	}

	if len(filters) == 0 {
		return r.writePlain("No filters set.\n")
	}

	r.writePlain("Found %d filters:\n\n", len(filters))
	for _, f := range filters {
		r.writePlain("%d. [%s] %s\n", f.ID, f.FilterType, f.Value)
	}
	return nil
}

// FiltersAdd adds a search filter.
func (r *Runner) FiltersAdd(ctx context.Context, cmd *cli.Command) error {
	filterType := cmd.StringArg("type")
	value := cmd.StringArg("value")

	if filterType == "" || value == "" {
		return fmt.Errorf("%w: filter type and value are required", shared.ErrMissingArgument)
	}

	filter, err := r.client.AddFilter(ctx, filterType, value)
	if err != nil {
		return err
	}

	r.writePlain("✓ Filter added: [%s] %s (id %d)\n", filter.FilterType, filter.Value, filter.ID)
	return nil
}

// FiltersRemove deletes a search filter by id.
func (r *Runner) FiltersRemove(ctx context.Context, cmd *cli.Command) error {
	rawID := cmd.StringArg("id")

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("%w: filter id must be a number, got %q", shared.ErrInvalidArgument, rawID)
	}

	if err := r.client.DeleteFilter(ctx, id); err != nil {
		return err
	}

	r.writePlain("✓ Filter %d removed\n", id)
	return nil
}

// authCommand handles account and session management against the backend
func authCommand(r *Runner) *cli.Command {
	passwordFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend account and session",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create a backend account",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "username",
					},
				},
				Flags:  []cli.Flag{passwordFlag()},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Log in and save the session",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "username",
					},
				},
				Flags:  []cli.Flag{passwordFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the account behind the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:   "status",
				Usage:  "Check backend health and authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:  "filters",
				Usage: "Manage search filters on the account",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List filters",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "json",
								Usage: "Output raw JSON",
							},
						},
						Action: r.FiltersList,
					},
					{
						Name:  "add",
						Usage: "Add a filter (e.g. artist \"Nickelback\")",
						Arguments: []cli.Argument{
							&cli.StringArg{
								Name: "type",
							},
							&cli.StringArg{
								Name: "value",
							},
						},
						Action: r.FiltersAdd,
					},
					{
						Name:    "remove",
						Aliases: []string{"rm"},
						Usage:   "Remove a filter by id",
						Arguments: []cli.Argument{
							&cli.StringArg{
								Name: "id",
							},
						},
						Action: r.FiltersRemove,
					},
				},
			},
		},
	}
}
