// Package config provides configuration management for motif projects
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with MOTIF_ prefix, and validation. It manages dev server
// settings, page scanning paths, static build output, and the motion
// engine's tuning knobs.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Pages       PagesConfig       `yaml:"pages"`
	Build       BuildConfig       `yaml:"build"`
	Motion      MotionConfig      `yaml:"motion"`
	Development DevelopmentConfig `yaml:"development"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Open           bool     `yaml:"open"`
	NoOpen         bool     `yaml:"no-open"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

type PagesConfig struct {
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	AssetPaths      []string `yaml:"asset_paths"`
}

type BuildConfig struct {
	OutputDir string `yaml:"output_dir"`
	Clean     bool   `yaml:"clean"`
	HashNames bool   `yaml:"hash_names"`
}

// MotionConfig tunes the runtime: smoothing rate, debounce windows, and the
// simulated viewport used for headless layout.
type MotionConfig struct {
	ScrollLerp      float64 `yaml:"scroll_lerp"`
	ResizeDelayMS   int     `yaml:"resize_delay_ms"`
	FrameIntervalMS int     `yaml:"frame_interval_ms"`
	TimeScale       float64 `yaml:"time_scale"`
	ViewportWidth   float64 `yaml:"viewport_width"`
	ViewportHeight  float64 `yaml:"viewport_height"`
}

// ResizeDelay returns the resize debounce window as a duration.
func (m MotionConfig) ResizeDelay() time.Duration {
	return time.Duration(m.ResizeDelayMS) * time.Millisecond
}

// FrameInterval returns the frame tick interval as a duration.
func (m MotionConfig) FrameInterval() time.Duration {
	return time.Duration(m.FrameIntervalMS) * time.Millisecond
}

type DevelopmentConfig struct {
	HotReload    bool `yaml:"hot_reload"`
	WatchDelayMS int  `yaml:"watch_delay_ms"`
}

// WatchDelay returns the file-watch debounce window as a duration.
func (d DevelopmentConfig) WatchDelay() time.Duration {
	return time.Duration(d.WatchDelayMS) * time.Millisecond
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle scan paths set via viper (workaround for viper slice handling)
	if viper.IsSet("pages.scan_paths") && len(config.Pages.ScanPaths) == 0 {
		if paths := viper.GetStringSlice("pages.scan_paths"); len(paths) > 0 {
			config.Pages.ScanPaths = paths
		}
	}
	if viper.IsSet("pages.exclude_patterns") && len(config.Pages.ExcludePatterns) == 0 {
		if patterns := viper.GetStringSlice("pages.exclude_patterns"); len(patterns) > 0 {
			config.Pages.ExcludePatterns = patterns
		}
	}
	if viper.IsSet("pages.asset_paths") && len(config.Pages.AssetPaths) == 0 {
		if paths := viper.GetStringSlice("pages.asset_paths"); len(paths) > 0 {
			config.Pages.AssetPaths = paths
		}
	}

	applyDefaults(&config)

	// Handle development settings set via viper (workaround for viper bool
	// handling)
	if viper.IsSet("development.hot_reload") {
		config.Development.HotReload = viper.GetBool("development.hot_reload")
	}
	if viper.IsSet("build.hash_names") {
		config.Build.HashNames = viper.GetBool("build.hash_names")
	}

	// Override no-open if explicitly set via flag
	if viper.IsSet("server.no-open") && viper.GetBool("server.no-open") {
		config.Server.Open = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}

	if len(config.Pages.ScanPaths) == 0 {
		config.Pages.ScanPaths = []string{"./pages"}
	}
	if len(config.Pages.AssetPaths) == 0 {
		config.Pages.AssetPaths = []string{"./assets"}
	}
	if len(config.Pages.ExcludePatterns) == 0 {
		config.Pages.ExcludePatterns = []string{"draft_*", "*.bak"}
	}

	if config.Build.OutputDir == "" {
		config.Build.OutputDir = "dist"
	}
	if !viper.IsSet("build.hash_names") {
		config.Build.HashNames = true
	}

	if config.Motion.ScrollLerp == 0 {
		config.Motion.ScrollLerp = 10
	}
	if config.Motion.ResizeDelayMS == 0 {
		config.Motion.ResizeDelayMS = 100
	}
	if config.Motion.FrameIntervalMS == 0 {
		config.Motion.FrameIntervalMS = 16
	}
	if config.Motion.TimeScale == 0 {
		config.Motion.TimeScale = 1
	}
	if config.Motion.ViewportWidth == 0 {
		config.Motion.ViewportWidth = 1280
	}
	if config.Motion.ViewportHeight == 0 {
		config.Motion.ViewportHeight = 800
	}

	if !viper.IsSet("development.hot_reload") {
		config.Development.HotReload = true
	}
	if config.Development.WatchDelayMS == 0 {
		config.Development.WatchDelayMS = 75
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validatePagesConfig(&config.Pages); err != nil {
		return fmt.Errorf("pages config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if err := validateMotionConfig(&config.Motion); err != nil {
		return fmt.Errorf("motion config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}
	return nil
}

// validatePagesConfig validates page scanning configuration values
func validatePagesConfig(config *PagesConfig) error {
	for _, path := range config.ScanPaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid scan path '%s': %w", path, err)
		}
	}
	for _, path := range config.AssetPaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid asset path '%s': %w", path, err)
		}
	}
	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	if config.OutputDir != "" {
		cleanPath := filepath.Clean(config.OutputDir)
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("output_dir contains path traversal: %s", config.OutputDir)
		}
	}
	return nil
}

// validateMotionConfig rejects tuning values the runtime cannot work with.
func validateMotionConfig(config *MotionConfig) error {
	if config.ScrollLerp < 0 {
		return fmt.Errorf("scroll_lerp must be non-negative, got %g", config.ScrollLerp)
	}
	if config.ResizeDelayMS < 0 {
		return fmt.Errorf("resize_delay_ms must be non-negative, got %d", config.ResizeDelayMS)
	}
	if config.FrameIntervalMS < 0 {
		return fmt.Errorf("frame_interval_ms must be non-negative, got %d", config.FrameIntervalMS)
	}
	if config.TimeScale < 0 {
		return fmt.Errorf("time_scale must be non-negative, got %g", config.TimeScale)
	}
	if config.ViewportWidth < 0 || config.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions must be non-negative, got %gx%g",
			config.ViewportWidth, config.ViewportHeight)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}
