package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "citewatch",
	Short: "Google Scholar citation tracker",
	Long: `citewatch monitors a Google Scholar profile for new citations.

Each check fetches the current metrics, diffs them against the last stored
snapshot, emails a summary when citations increased, and republishes the
static JSON consumed by the dashboard.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.citewatch.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("root-path", ".", "the path where data and dashboard output is saved")

	viper.BindPFlag("root_path", rootCmd.PersistentFlags().Lookup("root-path"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Secrets can live in a .env next to the binary.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory and current directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".citewatch")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix("CITEWATCH")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
