package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/citewatch/citewatch/internal/app"
)

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "Generate a starter publication alias map",
	Long: `Aliases writes a starter alias map from the stored snapshot.

The provider occasionally retitles publications, which would otherwise show
up as brand-new entries with their full citation count. Fill in the "from"
fields of the generated file to redirect superseded ids to their current
ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootPath := viper.GetString("root_path")

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		if err := application.GenerateAliases(rootPath); err != nil {
			return fmt.Errorf("aliases failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(aliasesCmd)
}
