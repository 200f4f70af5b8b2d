package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tqlx/internal/formatter"
	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/services"
	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/urfave/cli/v3"
)

// playbookInput collects playbook fields from a manifest and the command line. Flags win over the manifest.
type playbookInput struct {
	id            string
	name          string
	prompt        string
	emails        []string
	connectorID   int
	connectorName string
	cron          string
	status        string
}

func (r *Runner) readPlaybookInput(cmd *cli.Command) (*playbookInput, error) {
	in := &playbookInput{}

	if path := cmd.String("file"); path != "" {
		m, err := shared.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("loaded manifest", "path", path)

		in.id = m.ID
		in.name = m.Name
		in.prompt = m.Prompt
		in.emails = shared.CleanList(m.Emails)
		in.connectorID = m.ConnectorID
		in.connectorName = m.ConnectorName
		in.cron = m.Cron
		in.status = m.Status
	}

	if cmd.IsSet("id") {
		in.id = cmd.String("id")
	}
	if cmd.IsSet("name") {
		in.name = cmd.String("name")
	}
	if cmd.IsSet("prompt") {
		in.prompt = cmd.String("prompt")
	}
	if cmd.IsSet("emails") {
		in.emails = shared.SplitList(cmd.String("emails"))
	}
	if cmd.IsSet("connector") {
		in.connectorID = int(cmd.Int("connector"))
		in.connectorName = ""
	}
	if cmd.IsSet("connector-name") {
		in.connectorName = cmd.String("connector-name")
		if !cmd.IsSet("connector") {
			in.connectorID = 0
		}
	}
	if cmd.IsSet("cron") {
		in.cron = cmd.String("cron")
	}
	if cmd.IsSet("status") {
		in.status = cmd.String("status")
	}

	in.id = strings.TrimSpace(in.id)
	in.name = strings.TrimSpace(in.name)
	in.connectorName = strings.TrimSpace(in.connectorName)
	in.cron = strings.TrimSpace(in.cron)

	if in.connectorID < 0 {
		return nil, fmt.Errorf("%w: connector ID must be positive, got %d", shared.ErrInvalidArgument, in.connectorID)
	}
	return in, nil
}

// missingForCreate names the required create fields that are absent.
func (in *playbookInput) missingForCreate() []string {
	var missing []string
	if in.id == "" {
		missing = append(missing, "--id")
	}
	if strings.TrimSpace(in.prompt) == "" {
		missing = append(missing, "--prompt")
	}
	if in.name == "" {
		missing = append(missing, "--name")
	}
	if len(in.emails) == 0 {
		missing = append(missing, "--emails")
	}
	return missing
}

// resolveConnector picks the connector: explicit ID, then name lookup, then the persisted default.
// Returns 0 when none of these is available.
func (r *Runner) resolveConnector(ctx context.Context, client services.PlaybookAPI, in *playbookInput, settings *shared.Settings) (int, error) {
	switch {
	case in.connectorID > 0:
		return in.connectorID, nil
	case in.connectorName != "":
		connector, err := client.FindConnectorByName(ctx, in.connectorName)
		if err != nil {
			return 0, err
		}
		if connector == nil {
			return 0, fmt.Errorf("%w %q", shared.ErrConnectorMatch, in.connectorName)
		}
		r.logger.Info("resolved connector", "name", connector.Name, "id", connector.ID)
		return connector.ID, nil
	default:
		return settings.DefaultConnectorID, nil
	}
}

// scheduleFor picks the cron string: explicit, then the persisted default, then [models.DefaultCronString].
func scheduleFor(in *playbookInput, settings *shared.Settings) (cron string, defaulted bool) {
	switch {
	case in.cron != "":
		return in.cron, false
	case settings.DefaultCronString != "":
		return settings.DefaultCronString, true
	default:
		return models.DefaultCronString, true
	}
}

func (r *Runner) warnCron(cron string) {
	if err := formatter.ValidateCron(cron); err != nil {
		r.logger.Warn("cron expression may be rejected by the service", "error", err)
	}
}

// Create allocates a playbook and configures it in one step.
//
// Required fields are checked before any settings, key, or network access.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	in, err := r.readPlaybookInput(cmd)
	if err != nil {
		return err
	}

	if missing := in.missingForCreate(); len(missing) > 0 {
		r.writeUsage(cmd)
		return fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.Join(missing, ", "))
	}

	status, err := models.ParseStatus(in.status)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	settings, err := r.loadSettings()
	if err != nil {
		return err
	}
	if in.connectorID == 0 && in.connectorName == "" && settings.DefaultConnectorID == 0 {
		r.writeUsage(cmd)
		return fmt.Errorf("%w: pass --connector or --connector-name, or run 'tqlx config set-connector'", shared.ErrNoConnector)
	}

	client, err := r.apiClient()
	if err != nil {
		return err
	}

	connectorID, err := r.resolveConnector(ctx, client, in, settings)
	if err != nil {
		return err
	}

	cron, _ := scheduleFor(in, settings)
	r.warnCron(cron)

	params := models.CompletePlaybookParams{
		PlaybookID:     in.id,
		Prompt:         in.prompt,
		Name:           in.name,
		EmailAddresses: in.emails,
		ConnectorID:    connectorID,
		CronString:     cron,
		Status:         status,
	}

	r.logger.Info("creating playbook", "id", params.PlaybookID, "connector", connectorID, "cron", cron)

	playbook, err := client.CreateCompletePlaybook(ctx, params)
	r.recordHistory(models.OperationCreate, params.PlaybookID, err)

	return r.renderPlaybook("created", playbook, err)
}

// Update replaces a playbook's configuration. Only --id is required.
//
// The service replaces the whole record, so every field not given is filled from a default
// and those fields are reported in a warning.
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	in, err := r.readPlaybookInput(cmd)
	if err != nil {
		return err
	}

	if in.id == "" {
		r.writeUsage(cmd)
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}

	status, err := models.ParseStatus(in.status)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	settings, err := r.loadSettings()
	if err != nil {
		return err
	}

	client, err := r.apiClient()
	if err != nil {
		return err
	}

	var defaulted []string
	if in.name == "" {
		in.name = in.id
		defaulted = append(defaulted, "name")
	}
	if in.prompt == "" {
		defaulted = append(defaulted, "prompt")
	}
	if len(in.emails) == 0 {
		defaulted = append(defaulted, "emails")
	}
	if in.status == "" {
		defaulted = append(defaulted, "status")
	}

	connectorID, err := r.resolveConnector(ctx, client, in, settings)
	if err != nil {
		return err
	}
	if in.connectorID == 0 && in.connectorName == "" {
		defaulted = append(defaulted, "connector")
	}

	cron, cronDefaulted := scheduleFor(in, settings)
	if cronDefaulted {
		defaulted = append(defaulted, "cron")
	}
	r.warnCron(cron)

	if len(defaulted) > 0 {
		r.logger.Warn("update replaces the whole playbook; unset fields use defaults", "fields", strings.Join(defaulted, ","))
	}

	params := models.CompletePlaybookParams{
		PlaybookID:     in.id,
		Prompt:         in.prompt,
		Name:           in.name,
		EmailAddresses: in.emails,
		ConnectorID:    connectorID,
		CronString:     cron,
		Status:         status,
	}

	r.logger.Info("updating playbook", "id", params.PlaybookID, "connector", connectorID, "cron", cron)

	playbook, err := client.UpdatePlaybook(ctx, params.UpdateRequest())
	r.recordHistory(models.OperationUpdate, params.PlaybookID, err)

	return r.renderPlaybook("updated", playbook, err)
}

func (r *Runner) renderPlaybook(verb string, playbook *models.Playbook, err error) error {
	if r.jsonOutput {
		return writeResult(r, playbook, err)
	}
	if err != nil {
		return err
	}

	if err := r.writePlain("%s Playbook %s %s\n\n", r.palette.OK("✓"), playbook.PlaybookID, verb); err != nil {
		return err
	}
	return r.writeBytes(formatter.PlaybookToText(playbook, r.now()))
}
