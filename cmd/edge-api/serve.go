package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jencodes13/course-correction/internal/config"
	"github.com/jencodes13/course-correction/internal/logging"
	"github.com/jencodes13/course-correction/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// .env is optional; real deployments set the environment directly.
		_ = godotenv.Load()

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := logging.New(cfg.LogLevel, config.GetEnvString("LOG_FORMAT", "console"))
		defer log.Sync()

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
