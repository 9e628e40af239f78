// Package cmd provides the command-line interface for motif with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with
//	clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. MOTIF_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (MOTIF_SERVER_PORT, etc.)
//	4. Configuration files (.motif.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/motifkit/motif/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "motif",
	Short: "A motion and page-transition runtime for static marketing sites",
	Long: `Motif parses plain HTML pages into headless documents and drives a
motion runtime over them: smooth scrolling, viewport observation,
scroll-progress tracking, and page transitions with per-element
lifecycle hooks.

Quick Start:
  motif serve                     Start the dev server with live reload
  motif list                      List discovered pages and their modules
  motif build                     Write a static snapshot to dist/
  motif run home about            Simulate navigations and print reports`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .motif.yml, can also use MOTIF_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info",
		"log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. MOTIF_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .motif.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MOTIF_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".motif")
	}

	// Enable automatic environment variable binding with MOTIF_ prefix
	// Examples: MOTIF_SERVER_PORT, MOTIF_DEVELOPMENT_HOT_RELOAD
	viper.SetEnvPrefix("MOTIF")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// If the file doesn't exist Viper falls back to defaults without
	// failing.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI's logger from the loaded log configuration.
func newLogger(level, format string) logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(level),
		Format: format,
		Output: os.Stderr,
	})
}
