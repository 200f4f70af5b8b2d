package main

import (
	"context"

	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Template prints the example manifest, or writes it to --output without overwriting.
func (r *Runner) Template(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" || path == "-" {
		return r.writeBytes(shared.ExampleManifest())
	}

	if err := shared.CreateManifestFile(path); err != nil {
		return err
	}

	r.logger.Info("manifest written", "path", path)
	return r.writePlain("%s Wrote example manifest to %s\n", r.palette.OK("✓"), path)
}
