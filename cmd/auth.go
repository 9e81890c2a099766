package main

import (
	"context"

	"github.com/desertthunder/carlink/internal/shared"
	"github.com/urfave/cli/v3"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorization helpers",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the Connect authorization URL for the configured application",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthURL,
			},
		},
	}
}

// AuthURL prints the provider authorization URL a vehicle owner visits to
// grant access. Useful for testing the OAuth application without the web UI.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	svc, err := r.newService(cfg)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", svc.AuthURL(shared.GenerateID()))
}
