package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/citewatch/citewatch/internal/app"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one citation check",
	Long: `Check performs a complete citation check:
1. Loads the previously stored snapshot (absence means first run)
2. Fetches current metrics from the provider
3. Computes the per-publication citation delta
4. Sends a notification if new citations were detected
5. Stores the new snapshot and records a history point
6. Republishes the dashboard JSON

Fetch mode can be configured via --fetch-mode flag or fetch_mode in config:
  - auto: Use SerpAPI when a key is configured, scrape otherwise (default)
  - api: Always use SerpAPI (requires serpapi_key)
  - scrape: Always scrape the public profile page`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootPath := viper.GetString("root_path")

		// Override fetch mode from CLI flag if provided
		if fetchMode, _ := cmd.Flags().GetString("fetch-mode"); fetchMode != "" {
			viper.Set("fetch_mode", fetchMode)
		}

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		if err := application.Run(rootPath); err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		return nil
	},
}

func init() {
	checkCmd.Flags().String("fetch-mode", "", "Fetch mode: 'auto', 'api', or 'scrape'")
	rootCmd.AddCommand(checkCmd)
}
