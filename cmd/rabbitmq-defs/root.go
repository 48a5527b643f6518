package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/api"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/config"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

var (
	// Global flags
	envFileFlag  string
	logLevelFlag string

	// Loaded during PersistentPreRunE
	cfg *config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rabbitmq-defs",
		Short: "Export, transform and import RabbitMQ definitions",
		Long: `rabbitmq-defs works with RabbitMQ definition sets over the HTTP API.

Connection settings are read from RABBITMQ_* environment variables and,
when present, from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "dotenv file to load before the environment")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error (env: RABBITMQ_LOG_LEVEL)")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newTransformCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newDeclareCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newHashPasswordCmd())
	rootCmd.AddCommand(newAMQPURICmd())

	return rootCmd
}

func initializeGlobals() error {
	loaded, err := config.Load(envFileFlag)
	if err != nil {
		return err
	}
	if logLevelFlag != "" {
		loaded.LogLevel = logLevelFlag
	}
	logger.SetLevel(loaded.LogLevel)
	cfg = loaded
	return nil
}

func newAPIClient() (*api.Client, error) {
	client, err := api.NewClient(cfg.APIOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP API client: %w", err)
	}
	return client, nil
}
