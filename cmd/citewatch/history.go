package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/citewatch/citewatch/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded citation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootPath := viper.GetString("root_path")
		limit, _ := cmd.Flags().GetInt("limit")

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		if err := application.History(rootPath, limit); err != nil {
			return fmt.Errorf("history failed: %w", err)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 30, "number of history points to show")
	rootCmd.AddCommand(historyCmd)
}
