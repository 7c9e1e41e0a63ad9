// Package cmd provides the command-line interface for featforge with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --root, etc.) - highest priority
//	2. FEATFORGE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (FEATFORGE_FEATURES_ROOT, etc.)
//	4. Configuration files (.featforge.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/featforge/featforge/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "featforge",
	Short: "Feature discovery and registry generation for plugin-driven Go web apps",
	Long: `featforge scans a source tree for self-describing feature folders,
validates their declared metadata, derives a navigation model, and generates
the registry and module-aggregator artifacts that wire every discovered
feature into the host application.

Key Features:
  • Deterministic feature discovery by directory convention
  • Batch validation with aggregated, actionable error reports
  • Locale-aware navigation composition
  • Registry and module-aggregator code generation
  • Watch mode with debounced rebuilds and live reload

Quick Start:
  featforge build                 Run one discovery pass and generate artifacts
  featforge watch                 Rebuild on every source change
  featforge validate              Report validation issues without generating
  featforge list                  List discovered features

Command Aliases (for faster typing):
  build (b), watch (w), validate (v), list (l)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .featforge.yml, can also use FEATFORGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// bindFlags binds every changed flag of a command to the matching viper key,
// so flag values override config-file and environment values.
func bindFlags(cmd *cobra.Command, mapping map[string]string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := mapping[f.Name]; ok && f.Changed {
			viper.Set(key, f.Value.String())
		}
	})
}

// newLogger builds the CLI logger from the global flags.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	})
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: explicitly specified config file path
//  2. FEATFORGE_CONFIG_FILE environment variable
//  3. Default: .featforge.yml in the current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FEATFORGE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".featforge")
	}

	// Enable automatic environment variable binding with FEATFORGE_ prefix
	// Examples: FEATFORGE_FEATURES_ROOT, FEATFORGE_RELOAD_ENABLED
	viper.SetEnvPrefix("FEATFORGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files degrade to defaults without failing
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
