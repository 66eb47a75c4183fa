package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus-api/internal/pkg/config"
	"github.com/tasknexus/tasknexus-api/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tasknexus",
	Short: "TaskNexus task management API",
	Long: `TaskNexus serves the task management REST API and provides
administrative commands against the same stores.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if store, _ := cmd.Flags().GetString("store"); store != "" {
			cfg.Store = store
		}
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Service: "tasknexus",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "Persistence backend: mongo or memory (env: STORE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
