package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/keys"
	"github.com/mixview/mixview/internal/setup"
	"github.com/mixview/mixview/internal/shared"
	"github.com/mixview/mixview/internal/vault"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	client       *api.Client
	prober       *keys.Prober
	vault        *vault.Vault
	orchestrator *setup.Orchestrator
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *api.Client
	Prober     *keys.Prober
	Vault      *vault.Vault
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Client == nil {
		opts.Client = api.NewClient(opts.Config.Backend.URL, nil)
		opts.Client.SetRateLimit(opts.Config.Backend.RateLimitRPS)
	}
	if opts.Prober == nil {
		opts.Prober = keys.NewProber(opts.HTTPClient)
	}
	if opts.Vault == nil {
		dir, err := opts.Config.SessionDir()
		if err != nil {
			dir = ".mixview"
		}
		opts.Vault = vault.NewVault(dir, os.Getenv("MIXVIEW_VAULT_KEY"))
	}

	orchestrator := setup.NewOrchestrator(opts.Client, opts.Prober, opts.Logger, opts.Config.RelayAddr())

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		client:       opts.Client,
		prober:       opts.Prober,
		vault:        opts.Vault,
		orchestrator: orchestrator,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
	}
}

// SetLogger swaps the runner's logger. The orchestrator is rebuilt so link
// flows log to the same destination.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.orchestrator = setup.NewOrchestrator(r.client, r.prober, logger, r.config.RelayAddr())
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, linkCommand, unlinkCommand, servicesCommand, setupCommand, searchCommand, relatedCommand, graphCommand, cacheCommand, apiCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// saveSession stores the session in the vault and activates the token on
// the backend client.
func (r *Runner) saveSession(username string, token *api.TokenResponse) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no token to save", shared.ErrInvalidInput)
	}

	r.client.SetToken(token.AccessToken)

	session := vault.Session{
		Token:     token.AccessToken,
		TokenType: token.TokenType,
		Username:  username,
	}
	if err := r.vault.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// clearSession drops the stored session and deactivates the client token.
func (r *Runner) clearSession() error {
	r.client.SetToken("")
	return r.vault.Clear()
}

// openDatabase opens the local cache database, applying pool settings and
// any pending migrations. The returned func closes the handle.
func (r *Runner) openDatabase() (*sql.DB, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database)

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	payload, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(payload); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
