// Package cli implements the marketplace command line.
package cli

import (
	"fmt"

	"github.com/babushkai/saas-marketplace/internal/config"
	"github.com/babushkai/saas-marketplace/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const configFlag = "config"

// NewRootCommand builds the marketplace command tree.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "B2B SaaS marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(configFlag, "", "Optional config file (yaml, json or toml)")

	root.AddCommand(
		newServeCommand(v),
		newMigrateCommand(v),
		newSeedCommand(v),
		newTokenCommand(v),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads configuration and builds the logger for a command.
func setup(cmd *cobra.Command, v *viper.Viper) (*config.Config, *zap.Logger, error) {
	configFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Environment: cfg.App.Environment,
		ServiceName: cfg.App.ServiceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}
