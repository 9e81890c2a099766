package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/carlink/internal/services"
	"github.com/desertthunder/carlink/internal/shared"
	"github.com/desertthunder/carlink/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette

	// newService builds the vehicle service for a resolved config; tests
	// substitute a constructor returning a double.
	newService func(cfg *shared.Config) (services.VehicleService, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Palette    *ui.Palette
	NewService func(cfg *shared.Config) (services.VehicleService, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Palette == nil {
		opts.Palette = ui.DefaultPalette()
	}

	r := &Runner{
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    opts.Palette,
	}

	r.newService = opts.NewService
	if r.newService == nil {
		r.newService = r.smartcarService
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig loads and validates the effective configuration for a command.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	return shared.Resolve(cmd.String("config"))
}

// smartcarService is the production service constructor.
func (r *Runner) smartcarService(cfg *shared.Config) (services.VehicleService, error) {
	return services.NewSmartcarService(services.SmartcarOpts{
		ClientID:     cfg.Smartcar.ClientID,
		ClientSecret: cfg.Smartcar.ClientSecret,
		RedirectURI:  cfg.Smartcar.RedirectURI,
		Mode:         cfg.Smartcar.Mode,
		HTTPClient:   r.httpClient,
	})
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// configFlag is shared by every command that reads the configuration.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}
