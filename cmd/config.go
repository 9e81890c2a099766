package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/carlink/internal/shared"
	"github.com/urfave/cli/v3"
)

func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage application configuration",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets redacted",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigShow,
			},
		},
	}
}

// ConfigInit writes the embedded example configuration to the given path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return r.writePlain("%s %s\n", r.palette.OK("wrote"), path)
}

// ConfigShow resolves and prints the effective configuration. Credentials
// are redacted so the output is safe to paste into a bug report.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if err := r.writePlain("%s\n", r.palette.Title("smartcar")); err != nil {
		return err
	}
	_ = r.writePlain("  client_id:     %s\n", redact(cfg.Smartcar.ClientID))
	_ = r.writePlain("  client_secret: %s\n", redact(cfg.Smartcar.ClientSecret))
	_ = r.writePlain("  redirect_uri:  %s\n", cfg.Smartcar.RedirectURI)
	_ = r.writePlain("  mode:          %s\n", cfg.Smartcar.Mode)
	_ = r.writePlain("%s\n", r.palette.Title("server"))
	_ = r.writePlain("  port:          %d\n", cfg.Server.Port)

	return nil
}

// redact keeps the leading characters of a credential so distinct values
// remain distinguishable in output.
func redact(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:8] + "..."
}
