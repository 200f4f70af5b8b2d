package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tqlx/internal/formatter"
	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/urfave/cli/v3"
)

// settingsView is the settings record as shown to the user, with the key masked.
type settingsView struct {
	Path               string           `json:"path"`
	APIKey             string           `json:"apiKey,omitempty"`
	APIKeySource       shared.KeySource `json:"apiKeySource,omitempty"`
	BaseURL            string           `json:"baseUrl"`
	DefaultConnectorID int              `json:"defaultConnectorId,omitempty"`
	DefaultCronString  string           `json:"defaultCronString,omitempty"`
}

// ConfigSetAPIKey persists the API key.
func (r *Runner) ConfigSetAPIKey(ctx context.Context, cmd *cli.Command) error {
	key := strings.TrimSpace(cmd.String("key"))
	if key == "" {
		r.writeUsage(cmd)
		return fmt.Errorf("%w: --key", shared.ErrMissingArgument)
	}

	if _, err := r.updateSettings(func(s *shared.Settings) error {
		s.APIKey = key
		return nil
	}); err != nil {
		return err
	}

	r.logger.Debug("api key saved", "path", r.settingsPath)
	return r.writePlain("%s API key %s saved to %s\n", r.palette.OK("✓"), shared.MaskSecret(key), r.settingsPath)
}

// ConfigSetConnector persists the default connector, given by ID or resolved by name.
func (r *Runner) ConfigSetConnector(ctx context.Context, cmd *cli.Command) error {
	id := int(cmd.Int("id"))
	name := strings.TrimSpace(cmd.String("name"))

	switch {
	case id < 0:
		return fmt.Errorf("%w: --id must be positive, got %d", shared.ErrInvalidArgument, id)
	case id == 0 && name == "":
		r.writeUsage(cmd)
		return fmt.Errorf("%w: --id or --name", shared.ErrMissingArgument)
	case id == 0:
		client, err := r.apiClient()
		if err != nil {
			return err
		}
		connector, err := client.FindConnectorByName(ctx, name)
		if err != nil {
			return err
		}
		if connector == nil {
			return fmt.Errorf("%w %q", shared.ErrConnectorMatch, name)
		}
		r.logger.Info("resolved connector", "name", connector.Name, "id", connector.ID)
		id = connector.ID
	}

	if _, err := r.updateSettings(func(s *shared.Settings) error {
		s.DefaultConnectorID = id
		return nil
	}); err != nil {
		return err
	}

	return r.writePlain("%s Default connector set to %d\n", r.palette.OK("✓"), id)
}

// ConfigSetCron persists the default cron schedule. Expressions that do not parse locally are saved with a warning.
func (r *Runner) ConfigSetCron(ctx context.Context, cmd *cli.Command) error {
	cron := strings.TrimSpace(cmd.String("cron"))
	if cron == "" {
		r.writeUsage(cmd)
		return fmt.Errorf("%w: --cron", shared.ErrMissingArgument)
	}

	if err := formatter.ValidateCron(cron); err != nil {
		r.logger.Warn("cron expression may be rejected by the service", "error", err)
	}

	if _, err := r.updateSettings(func(s *shared.Settings) error {
		s.DefaultCronString = cron
		return nil
	}); err != nil {
		return err
	}

	return r.writePlain("%s Default schedule set to %s\n", r.palette.OK("✓"), formatter.DescribeSchedule(cron, r.now()))
}

// ConfigSetBaseURL persists the service origin. An empty value clears the override.
func (r *Runner) ConfigSetBaseURL(ctx context.Context, cmd *cli.Command) error {
	baseURL := strings.TrimSpace(cmd.String("url"))
	if baseURL != "" && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return fmt.Errorf("%w: --url must start with http:// or https://", shared.ErrInvalidArgument)
	}

	settings, err := r.updateSettings(func(s *shared.Settings) error {
		s.BaseURL = baseURL
		return nil
	})
	if err != nil {
		return err
	}

	return r.writePlain("%s Base URL set to %s\n", r.palette.OK("✓"), settings.ResolvedBaseURL())
}

// ConfigShow prints the settings record and where the effective API key comes from.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.loadSettings()
	if err != nil {
		return err
	}

	view := settingsView{
		Path:               r.settingsPath,
		BaseURL:            settings.ResolvedBaseURL(),
		DefaultConnectorID: settings.DefaultConnectorID,
		DefaultCronString:  settings.DefaultCronString,
	}
	if key, source, err := shared.ResolveAPIKey(settings, r.getenv); err == nil {
		view.APIKey = shared.MaskSecret(key)
		view.APIKeySource = source
	}

	if r.jsonOutput {
		return writeResult(r, view, nil)
	}

	apiKey := r.palette.Warn("not set")
	if view.APIKey != "" {
		apiKey = fmt.Sprintf("%s (from %s)", view.APIKey, view.APIKeySource)
	}
	connector := r.palette.Help("not set")
	if view.DefaultConnectorID != 0 {
		connector = fmt.Sprint(view.DefaultConnectorID)
	}
	schedule := r.palette.Help("not set, using " + models.DefaultCronString)
	if view.DefaultCronString != "" {
		schedule = formatter.DescribeSchedule(view.DefaultCronString, r.now())
	}

	lines := [][2]string{
		{"Path:", view.Path},
		{"API key:", apiKey},
		{"Base URL:", view.BaseURL},
		{"Default connector:", connector},
		{"Default schedule:", schedule},
	}

	if err := r.writePlain("%s\n", r.palette.Title("Settings")); err != nil {
		return err
	}
	for _, line := range lines {
		if err := r.writePlain("%-19s%s\n", line[0], line[1]); err != nil {
			return err
		}
	}
	return nil
}

// ConfigPath prints the settings file location.
func (r *Runner) ConfigPath(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("%s\n", r.settingsPath)
}
