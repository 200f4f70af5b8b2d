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

// Connectors lists connectors, or the first one matching --name.
func (r *Runner) Connectors(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	client, err := r.apiClient()
	if err != nil {
		return err
	}

	var connectors []models.Connector
	if name := strings.TrimSpace(cmd.String("name")); name != "" {
		connector, err := client.FindConnectorByName(ctx, name)
		if r.jsonOutput {
			return writeResult(r, connector, err)
		}
		if err != nil {
			return err
		}
		if connector == nil {
			r.logger.Warn("no connector matches", "name", name)
			return r.writePlain("No connector matches %q\n", name)
		}
		connectors = []models.Connector{*connector}
	} else {
		connectors, err = client.ListConnectors(ctx)
		if r.jsonOutput {
			if err == nil && connectors == nil {
				connectors = []models.Connector{}
			}
			return writeResult(r, connectors, err)
		}
		if err != nil {
			return err
		}
	}

	r.logger.Debug("connectors fetched", "count", len(connectors))

	data, err := formatter.ExportConnectors(connectors, format)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if err := formatter.WriteExport(r.output, output, data); err != nil {
		return err
	}
	if output != "" && output != "-" {
		return r.writePlain("%s Wrote %d connectors to %s\n", r.palette.OK("✓"), len(connectors), output)
	}
	return nil
}
