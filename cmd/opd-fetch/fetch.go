// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/opd-fetch/internal/fetch"
	"github.com/pdiddy/opd-fetch/internal/input"
	"github.com/pdiddy/opd-fetch/internal/opd"
	"github.com/pdiddy/opd-fetch/internal/secrets"
	"github.com/pdiddy/opd-fetch/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultAttempts  = 3
	defaultUserAgent = "opd-fetch/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download result files for the publication numbers in an input file",
	Long: `Fetch reads a column of publication numbers (e.g. TW202528785A) from the
input spreadsheet or CSV, authenticates against the OPD API once, and then
per case: resolves the case number, lists the case's result files, and
downloads each file to the output directory. Failures are isolated per case
and recorded in the run log; the run always continues to the next case.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("input", "patents.xlsx", "input spreadsheet or CSV file")
	fetchCmd.Flags().String("column", "公開公告號", "input column holding publication numbers")
	fetchCmd.Flags().String("output-dir", "pdf_downloads", "directory for downloaded files")
	fetchCmd.Flags().String("metadata-dir", "metadata", "directory for per-case YAML records (empty to disable)")
	fetchCmd.Flags().String("log", "download_log.csv", "run log CSV path")
	fetchCmd.Flags().String("keywords", "", "only download files whose name contains one of these comma-separated keywords")
	fetchCmd.Flags().String("base-url", opd.DefaultBaseURL, "OPD API base URL")
	fetchCmd.Flags().String("username", "", "OPD API username (overrides .secrets/opd-username)")
	fetchCmd.Flags().String("password", "", "OPD API password (overrides .secrets/opd-password)")
	fetchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	fetchCmd.Flags().Duration("delay", opd.DefaultCaseDelay, "delay between consecutive cases")
	fetchCmd.Flags().Int("retries", defaultAttempts, "attempt count for API calls")

	rootCmd.AddCommand(fetchCmd)
}

// stringSetting resolves a string setting: a flag set on the command line
// wins, then the viper config/env value, then the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func runFetch(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	retries, _ := cmd.Flags().GetInt("retries")
	baseURL, _ := cmd.Flags().GetString("base-url")

	var keywords []string
	if kw := stringSetting(cmd, "keywords", "include_keywords"); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		InputFile:       stringSetting(cmd, "input", "input_file"),
		InputColumn:     stringSetting(cmd, "column", "input_column"),
		OutputDir:       stringSetting(cmd, "output-dir", "output_dir"),
		MetadataDir:     stringSetting(cmd, "metadata-dir", "metadata_dir"),
		LogPath:         stringSetting(cmd, "log", "log_path"),
		IncludeKeywords: keywords,
		MaxAttempts:     retries,
		CaseDelay:       delay,
	}

	flagUser, _ := cmd.Flags().GetString("username")
	flagPass, _ := cmd.Flags().GetString("password")
	username := secrets.Get(loadedSecrets, "opd-username", firstNonEmpty(flagUser, viper.GetString("username")))
	password := secrets.Get(loadedSecrets, "opd-password", firstNonEmpty(flagPass, viper.GetString("password")))
	if username == "" || password == "" {
		return fmt.Errorf("credentials required: set .secrets/opd-username and .secrets/opd-password, or --username/--password")
	}

	pubNos, err := input.LoadColumn(cfg.InputFile, cfg.InputColumn)
	if err != nil {
		return err
	}
	if len(pubNos) == 0 {
		return fmt.Errorf("input file %s has no publication numbers in column %q", cfg.InputFile, cfg.InputColumn)
	}

	client := opd.NewClient(
		opd.WithBaseURL(baseURL),
		opd.WithUserAgent(cfg.UserAgent),
		opd.WithMaxAttempts(cfg.MaxAttempts),
		opd.WithCaseDelay(cfg.CaseDelay),
		opd.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	ctx := cmd.Context()
	if err := client.Authenticate(ctx, username, password); err != nil {
		return err
	}

	log, result, err := fetch.FetchBatch(ctx, client, pubNos, cfg, os.Stdout)
	if log != nil && log.Len() > 0 {
		logPath, writeErr := log.WriteCSV(cfg.LogPath)
		if writeErr != nil {
			return writeErr
		}
		if logPath != cfg.LogPath {
			fmt.Fprintf(os.Stderr, "warning: %s was locked, log written to %s\n", cfg.LogPath, logPath)
		}
		fmt.Printf("Done. Downloads: %s, log: %s\n", cfg.OutputDir, logPath)
	}
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d case(s) failed", result.Failed)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
