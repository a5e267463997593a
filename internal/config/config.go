// Package config loads and validates capture configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tobran/go-web2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Validation bounds mirroring the capture library's request limits.
const (
	MinScalePercent = 10
	MaxScalePercent = 200
	MaxViewportPx   = 10000
)

// Config holds all configuration for page capture.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Capture CaptureConfig `yaml:"capture"`
	Browser BrowserConfig `yaml:"browser"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = current directory)
}

// CaptureConfig defines per-capture rendering options.
type CaptureConfig struct {
	ViewportWidth  int `yaml:"viewportWidth"`  // 0 = library default
	ViewportHeight int `yaml:"viewportHeight"` // 0 = library default
	ScalePercent   int `yaml:"scalePercent"`   // 0 = 100
	TimeoutSeconds int `yaml:"timeoutSeconds"` // Navigation timeout, 0 = library default
	SettleSeconds  int `yaml:"settleSeconds"`  // Post-load settle delay, 0 = library default
}

// BrowserConfig defines browser launch options.
type BrowserConfig struct {
	Bin string `yaml:"bin"` // Chrome/Chromium binary (empty = rod-managed download)
}

// LogConfig defines logging options.
type LogConfig struct {
	File string `yaml:"file"` // Rotating log file path (empty = stderr only)
}

// HistoryConfig defines capture history options.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // SQLite database path (empty = default location)
}

// Validate checks that configured values are inside the ranges the
// capture library accepts, so misconfiguration fails before any browser
// is launched.
func (c *Config) Validate() error {
	if c.Capture.ScalePercent != 0 {
		if c.Capture.ScalePercent < MinScalePercent || c.Capture.ScalePercent > MaxScalePercent {
			return fmt.Errorf("capture.scalePercent: must be between %d and %d, got %d",
				MinScalePercent, MaxScalePercent, c.Capture.ScalePercent)
		}
	}
	if c.Capture.ViewportWidth < 0 || c.Capture.ViewportWidth > MaxViewportPx {
		return fmt.Errorf("capture.viewportWidth: must be between 0 and %d, got %d",
			MaxViewportPx, c.Capture.ViewportWidth)
	}
	if c.Capture.ViewportHeight < 0 || c.Capture.ViewportHeight > MaxViewportPx {
		return fmt.Errorf("capture.viewportHeight: must be between 0 and %d, got %d",
			MaxViewportPx, c.Capture.ViewportHeight)
	}
	if c.Capture.TimeoutSeconds < 0 {
		return fmt.Errorf("capture.timeoutSeconds: must not be negative, got %d", c.Capture.TimeoutSeconds)
	}
	if c.Capture.SettleSeconds < 0 {
		return fmt.Errorf("capture.settleSeconds: must not be negative, got %d", c.Capture.SettleSeconds)
	}
	return nil
}

// DefaultConfig returns a neutral configuration with all features at
// their library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-web2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-web2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
