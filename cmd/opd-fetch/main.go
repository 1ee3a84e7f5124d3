// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the opd-fetch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opd-fetch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the opd-fetch CLI.
var rootCmd = &cobra.Command{
	Use:   "opd-fetch",
	Short: "Bulk-download TIPO patent-case result files",
	Long: `opd-fetch reads patent publication numbers from a spreadsheet or CSV file,
resolves each one against the TIPO OPD API, and downloads the case's result
files to a local directory. One status row per case is written to a CSV run
log, so a run can be audited and safely repeated: files already on disk are
not downloaded again.

Credentials come from .secrets/opd-username and .secrets/opd-password, the
config file, or flags.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./opd-fetch.yaml or ~/.config/opd-fetch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("opd-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "opd-fetch"))
		}
	}

	viper.SetEnvPrefix("OPD_FETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
