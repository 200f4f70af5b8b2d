package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/repositories"
	"github.com/desertthunder/tqlx/internal/services"
	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/desertthunder/tqlx/internal/ui"
	"github.com/urfave/cli/v3"
)

// ClientFactory builds the API client once the key and base URL are known.
type ClientFactory func(cfg services.ClientConfig) (services.PlaybookAPI, error)

func defaultClientFactory(cfg services.ClientConfig) (services.PlaybookAPI, error) {
	client, err := services.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The settings record, API client, and history store are loaded on first use so that
// commands which do not need them never touch the network or the database.
type Runner struct {
	settingsPath string
	settings     *shared.Settings
	getenv       func(string) string
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
	errOutput    io.Writer
	palette      *ui.Palette
	now          func() time.Time
	jsonOutput   bool

	newClient ClientFactory
	client    services.PlaybookAPI

	historyDB *sql.DB
	history   *repositories.HistoryRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	SettingsPath string
	Getenv       func(string) string
	HTTPClient   *http.Client
	Logger       *log.Logger
	Output       io.Writer
	ErrOutput    io.Writer
	Palette      *ui.Palette
	Now          func() time.Time
	NewClient    ClientFactory
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Palette == nil {
		opts.Palette = ui.DefaultPalette
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewClient == nil {
		opts.NewClient = defaultClientFactory
	}

	return &Runner{
		settingsPath: opts.SettingsPath,
		getenv:       opts.Getenv,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
		errOutput:    opts.ErrOutput,
		palette:      opts.Palette,
		now:          opts.Now,
		newClient:    opts.NewClient,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		configCommand, connectorsCommand, createCommand, updateCommand, historyCommand, templateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the global flags. It runs ahead of every subcommand.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.settingsPath = path
	}
	if r.settingsPath == "" {
		path, err := shared.DefaultSettingsPath()
		if err != nil {
			return ctx, err
		}
		r.settingsPath = path
	}

	r.jsonOutput = cmd.Bool("json")
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.logger.Debug("settings", "path", r.settingsPath)
	return ctx, nil
}

// loadSettings reads the settings file once per invocation.
func (r *Runner) loadSettings() (*shared.Settings, error) {
	if r.settings != nil {
		return r.settings, nil
	}

	settings, err := shared.LoadSettings(r.settingsPath)
	if err != nil {
		return nil, err
	}
	r.settings = settings
	return settings, nil
}

// updateSettings is a read-modify-write of the settings file that refreshes the cached record.
func (r *Runner) updateSettings(fn func(*shared.Settings) error) (*shared.Settings, error) {
	settings, err := shared.UpdateSettings(r.settingsPath, fn)
	if err != nil {
		return nil, err
	}
	r.settings = settings
	return settings, nil
}

// apiClient builds the client on first use.
//
// The key is resolved through [shared.APIKeyPrecedence]; a missing key fails here, before any request is made.
func (r *Runner) apiClient() (services.PlaybookAPI, error) {
	if r.client != nil {
		return r.client, nil
	}

	settings, err := r.loadSettings()
	if err != nil {
		return nil, err
	}

	key, source, err := shared.ResolveAPIKey(settings, r.getenv)
	if err != nil {
		return nil, err
	}

	baseURL := settings.ResolvedBaseURL()
	r.logger.Debug("building API client", "key_source", source, "base_url", baseURL)

	client, err := r.newClient(services.ClientConfig{
		APIKey:     key,
		BaseURL:    baseURL,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "client"),
	})
	if err != nil {
		return nil, err
	}

	r.client = client
	return client, nil
}

// historyRepo opens the history database next to the settings file on first use.
func (r *Runner) historyRepo() (*repositories.HistoryRepository, error) {
	if r.history != nil {
		return r.history, nil
	}

	db, err := shared.OpenHistoryDatabase(shared.HistoryPath(r.settingsPath))
	if err != nil {
		return nil, err
	}

	r.historyDB = db
	r.history = repositories.NewHistoryRepository(db)
	return r.history, nil
}

// recordHistory stores the outcome of a playbook operation. Failures are logged and never fail the command.
func (r *Runner) recordHistory(op models.HistoryOperation, playbookID string, opErr error) {
	repo, err := r.historyRepo()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return
	}

	if _, err := repo.Record(op, playbookID, opErr); err != nil {
		r.logger.Warn("failed to record history", "operation", op, "playbook", playbookID, "error", err)
	}
}

// Close releases the history database, if it was opened.
func (r *Runner) Close() {
	if r.historyDB != nil {
		r.historyDB.Close()
		r.historyDB = nil
		r.history = nil
	}
}

// writeResult writes the {success, data | error} envelope in JSON mode and passes err through.
func writeResult[T any](r *Runner, data T, err error) error {
	if werr := r.writeJSON(services.NewResult(data, err), true); werr != nil {
		return werr
	}
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeUsage prints the command's usage line to the error stream.
func (r *Runner) writeUsage(cmd *cli.Command) {
	fmt.Fprintln(r.errOutput, r.palette.Help("Usage: "+cmd.UsageText))
}
