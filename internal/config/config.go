// Package config provides configuration management for featforge using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with the FEATFORGE_ prefix, validation, and path-safety checks. It manages
// the feature scan root, exclusion patterns, generated-output settings, and
// watch-mode options like debounce delay and the live-reload server.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Features FeaturesConfig `yaml:"features"`
	Generate GenerateConfig `yaml:"generate"`
	Watch    WatchConfig    `yaml:"watch"`
	Reload   ReloadConfig   `yaml:"reload"`
}

// FeaturesConfig controls feature discovery.
type FeaturesConfig struct {
	// Root is the directory scanned for feature folders
	Root string `yaml:"root"`
	// ExcludeDirs are directory names skipped during traversal
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// GenerateConfig controls artifact generation.
type GenerateConfig struct {
	// OutputDir receives the generated registry and aggregator artifacts;
	// it is always excluded from scanning and watching
	OutputDir string `yaml:"output_dir"`
	// Collation selects the language used for navigation label ordering
	Collation string `yaml:"collation"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Debounce groups rapid file changes into one rebuild trigger
	Debounce time.Duration `yaml:"debounce"`
}

// ReloadConfig controls the optional live-reload notifier.
type ReloadConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper's handling of slices and bools set via env/flags
	if viper.IsSet("features.root") {
		config.Features.Root = viper.GetString("features.root")
	}
	if viper.IsSet("features.exclude_dirs") {
		config.Features.ExcludeDirs = viper.GetStringSlice("features.exclude_dirs")
	}
	if viper.IsSet("generate.output_dir") {
		config.Generate.OutputDir = viper.GetString("generate.output_dir")
	}
	if viper.IsSet("reload.enabled") {
		config.Reload.Enabled = viper.GetBool("reload.enabled")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Features.Root == "" {
		config.Features.Root = "./features"
	}
	if len(config.Features.ExcludeDirs) == 0 {
		config.Features.ExcludeDirs = []string{"node_modules", "vendor", "testdata"}
	}
	if config.Generate.OutputDir == "" {
		config.Generate.OutputDir = "./featforge"
	}
	if config.Generate.Collation == "" {
		config.Generate.Collation = "en"
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
	if config.Reload.Host == "" {
		config.Reload.Host = "localhost"
	}
	if config.Reload.Port == 0 {
		config.Reload.Port = 7791
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validatePath(config.Features.Root); err != nil {
		return fmt.Errorf("features root: %w", err)
	}
	if err := validatePath(config.Generate.OutputDir); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	for _, dir := range config.Features.ExcludeDirs {
		if dir == "" || strings.ContainsAny(dir, "/\\") {
			return fmt.Errorf("exclude_dirs entries must be plain directory names, got %q", dir)
		}
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	if config.Reload.Port < 0 || config.Reload.Port > 65535 {
		return fmt.Errorf("reload port %d is not in valid range 0-65535", config.Reload.Port)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
