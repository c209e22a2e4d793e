// Package cli implements the salinity command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/salinityengine/salinity/internal/config"
	"github.com/salinityengine/salinity/internal/injector"
)

type options struct {
	configPath string
	cfg        config.Config
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "salinity",
		Short:         "Inspect, convert and serve salinity scene documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")

	root.AddCommand(
		newValidateCommand(opts),
		newConvertCommand(opts),
		newQueryCommand(opts),
		newStoreCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (o *options) runtime(ctx context.Context) (*injector.Runtime, func(), error) {
	return injector.InitializeRuntime(ctx, o.cfg)
}
