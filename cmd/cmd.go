// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/tqlx/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// newApp builds the root command with the global flags shared by every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tqlx",
		Usage:     "Manage TextQL playbooks and connectors from the command line",
		Version:   version,
		Writer:    r.output,
		ErrWriter: r.errOutput,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the settings file (default ~/.textql/config.json)",
				Sources: cli.EnvVars(shared.ConfigPathEnv),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as a {success, data | error} JSON envelope",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// configCommand manages the persisted settings file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage persisted settings",
		Commands: []*cli.Command{
			{
				Name:      "set-api-key",
				Usage:     "Store the API key",
				UsageText: "tqlx config set-api-key --key=<key>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Usage: "TextQL API key"},
				},
				Action: r.ConfigSetAPIKey,
			},
			{
				Name:      "set-connector",
				Usage:     "Store the default connector",
				UsageText: "tqlx config set-connector --id=<connector-id> | --name=<connector-name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Usage: "Connector ID"},
					&cli.StringFlag{Name: "name", Usage: "Resolve the connector by (partial) name"},
				},
				Action: r.ConfigSetConnector,
			},
			{
				Name:      "set-cron",
				Usage:     "Store the default cron schedule",
				UsageText: `tqlx config set-cron --cron="0 9 * * *"`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cron", Usage: "Five-field cron expression"},
				},
				Action: r.ConfigSetCron,
			},
			{
				Name:      "set-base-url",
				Usage:     "Point the client at a different service origin",
				UsageText: "tqlx config set-base-url --url=<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "Base URL; empty restores the default"},
				},
				Action: r.ConfigSetBaseURL,
			},
			{
				Name:   "show",
				Usage:  "Show the current settings",
				Action: r.ConfigShow,
			},
			{
				Name:   "path",
				Usage:  "Print the settings file location",
				Action: r.ConfigPath,
			},
		},
	}
}

// connectorsCommand lists connectors
func connectorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "connectors",
		Usage:     "List database connectors",
		UsageText: "tqlx connectors [--name=<substring>] [--format=text|csv|markdown] [--output=<file>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Show only the first connector whose name contains this text"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: text, csv, markdown", Value: "text"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the listing to a file"},
		},
		Action: r.Connectors,
	}
}

func playbookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "Playbook ID"},
		&cli.StringFlag{Name: "prompt", Usage: "SQL query"},
		&cli.StringFlag{Name: "name", Usage: "Display name"},
		&cli.StringFlag{Name: "emails", Usage: "Comma-separated notification addresses"},
		&cli.IntFlag{Name: "connector", Usage: "Connector ID"},
		&cli.StringFlag{Name: "connector-name", Usage: "Resolve the connector by (partial) name"},
		&cli.StringFlag{Name: "cron", Usage: "Five-field cron expression"},
		&cli.StringFlag{Name: "status", Usage: "ACTIVE or INACTIVE"},
		&cli.StringFlag{Name: "file", Usage: "TOML playbook manifest; flags override its values"},
	}
}

// createCommand creates and configures a playbook
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a playbook and configure its query, recipients, and schedule",
		UsageText: "tqlx create --id=<id> --prompt=<sql> --name=<name> --emails=<a,b> " +
			"[--connector=<id> | --connector-name=<name>] [--cron=<expr>] [--status=ACTIVE|INACTIVE] [--file=<manifest>]",
		Flags:  playbookFlags(),
		Action: r.Create,
	}
}

// updateCommand replaces a playbook's configuration
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Replace a playbook's configuration (unset fields fall back to defaults)",
		UsageText: "tqlx update --id=<id> [--prompt=<sql>] [--name=<name>] [--emails=<a,b>] " +
			"[--connector=<id> | --connector-name=<name>] [--cron=<expr>] [--status=ACTIVE|INACTIVE] [--file=<manifest>]",
		Flags:  playbookFlags(),
		Action: r.Update,
	}
}

// historyCommand lists locally recorded operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent create/update outcomes recorded on this machine",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of entries", Value: 20},
			&cli.StringFlag{Name: "playbook", Usage: "Only entries for this playbook ID"},
			&cli.BoolFlag{Name: "clear", Usage: "Erase all recorded entries"},
		},
		Action: r.History,
	}
}

// templateCommand prints or writes the example playbook manifest
func templateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Print an example playbook manifest for --file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the manifest to a file instead of stdout"},
		},
		Action: r.Template,
	}
}
