package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"allowhost/internal/app"
	"allowhost/internal/app/version"
)

var (
	settingsPath string
	logLevel     string
	port         int
	seedFile     string
)

var rootCmd = &cobra.Command{
	Use:   "allowhost",
	Short: "Hostname allow-list checker",
	Long: `allowhost answers whether a hostname, or a *.domain wildcard, is on an
allow-list kept in a local SQL store.

Example:
  allowhost load --seed-file data/hostnames.txt
  allowhost serve --port 8080`,
	Version:       version.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTML form, JSON API and GraphQL endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.Serve(cmd.Context(), options())
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import the hostnames seed file into the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outcome, err := app.Load(cmd.Context(), options())
		if err != nil {
			return err
		}
		log.Infof("Inserted %d hostnames, skipped %d (already present).", outcome.Inserted, outcome.Skipped)
		return nil
	},
}

func options() app.Options {
	return app.Options{
		SettingsPath: settingsPath,
		LogLevel:     logLevel,
		Port:         port,
		SeedFile:     seedFile,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "data/settings.json", "settings file (created with defaults when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL or info")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed-file", "", "hostnames file; defaults to seed.file from the settings")

	serveCmd.Flags().IntVar(&port, "port", 0, "port to listen on; defaults to BACKEND_PORT, PORT or server.port")

	rootCmd.AddCommand(serveCmd, loadCmd)
}
