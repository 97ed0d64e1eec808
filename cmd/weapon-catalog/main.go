// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the weapon-catalog CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weapon-catalog/internal/logging"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// pipelineCfg is the merged defaults, config file, env, and flags.
	pipelineCfg types.PipelineConfig
	logger      *slog.Logger
	logCloser   io.Closer
)

// rootCmd is the base command for the weapon-catalog CLI.
var rootCmd = &cobra.Command{
	Use:   "weapon-catalog",
	Short: "Extract and deduplicate weapon catalogs from IMFDB game pages",
	Long: `weapon-catalog scrapes IMFDB game pages, recovers the real-world and
in-game name of every weapon entry, collapses duplicates, and exports the
catalog as CSV, JSON, YAML, or a markdown table.

Subcommands cover the full scrape, extraction from a saved page,
deduplication of an exported list, and queries against the SQLite catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pipelineCfg = cfg

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, closer, err := logging.NewFromConfig(cfg.Log, verbose)
		if err != nil {
			return err
		}
		logger, logCloser = l, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./weapon-catalog.yaml or ~/.config/weapon-catalog/weapon-catalog.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file (rotated)")
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("weapon-catalog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "weapon-catalog"))
		}
	}

	viper.SetEnvPrefix("WEAPON_CATALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults(types.DefaultPipelineConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
