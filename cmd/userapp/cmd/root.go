// Package cmd holds the userapp command line.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjaus/mediator/internal/app"
	"github.com/bjaus/mediator/internal/config"
)

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

type options struct {
	configFile string
}

// NewRootCmd builds the userapp command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "userapp",
		Short: "User accounts served through an in-process mediator",
		Long: `userapp registers, authenticates and manages user accounts.

Every request becomes a message dispatched through a mediator with
logging, metrics, timeout, authorization, validation, caching and retry
behaviors. Messages arrive over HTTP or as JSON envelopes.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "config file (.toml, .yaml or .yml)")

	root.AddCommand(
		newServeCmd(opts),
		newDispatchCmd(opts),
		newRoutesCmd(opts),
	)
	return root
}

// build loads configuration and wires an App. Logs go to logOut.
func (o *options) build(ctx context.Context, logOut io.Writer) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Logger(logOut)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
