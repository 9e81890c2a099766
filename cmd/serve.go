package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/carlink/internal/server"
	"github.com/desertthunder/carlink/internal/services"
	"github.com/desertthunder/carlink/internal/session"
	"github.com/desertthunder/carlink/internal/shared"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web application",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the application in the default browser",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Serve,
	}
}

// Serve resolves the configuration, wires the vehicle service, session
// store, and handlers, then runs the HTTP server until the context is
// cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = shared.GenerateID()
		r.logger.Warn("no session secret configured, sessions will not survive a restart")
	}

	svc, err := r.newService(cfg)
	if err != nil {
		return err
	}

	app, err := server.NewApp(server.AppOpts{
		Service: svc,
		Store:   session.NewStore(secret),
		Logger:  r.logger,
	})
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recovery(r.logger), server.Logging(r.logger))
	app.Register(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	r.banner(svc, url)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Errorf("server shutdown: %v", err)
		}
	}()

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
		}
	}

	r.logger.Infof("listening on %s", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (r *Runner) banner(svc services.VehicleService, url string) {
	_ = r.writePlain("%s\n", r.palette.Title("carlink"))
	_ = r.writePlain("  provider: %s\n", svc.Name())
	if svc.TestMode() {
		_ = r.writePlain("  mode:     %s\n", r.palette.Warn("test (simulated vehicles)"))
	} else {
		_ = r.writePlain("  mode:     %s\n", r.palette.OK("live"))
	}
	_ = r.writePlain("  url:      %s\n\n", r.palette.Help(url))
}
