// Package config loads frameocr settings from files, environment variables
// and flags into typed structs owned by the packages they configure.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MeKo-Tech/frameocr/internal/batch"
	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/recognizer"
	"github.com/MeKo-Tech/frameocr/internal/scoring"
	"github.com/MeKo-Tech/frameocr/internal/selection"
	"github.com/MeKo-Tech/frameocr/internal/server"
	"github.com/MeKo-Tech/frameocr/internal/variant"
)

// Config is the complete configuration for all commands.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	Recognizer recognizer.Config `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Frame      frame.Options     `mapstructure:"frame"      yaml:"frame"      json:"frame"`
	Variants   variant.Factors   `mapstructure:"variants"   yaml:"variants"   json:"variants"`
	Scoring    ScoringConfig     `mapstructure:"scoring"    yaml:"scoring"    json:"scoring"`
	Output     OutputConfig      `mapstructure:"output"     yaml:"output"     json:"output"`
	Server     server.Config     `mapstructure:"server"     yaml:"server"     json:"server"`
	Batch      BatchConfig       `mapstructure:"batch"      yaml:"batch"      json:"batch"`
}

// ScoringConfig holds the confidence heuristic and the early-exit threshold.
type ScoringConfig struct {
	EarlyExitThreshold float64              `mapstructure:"early_exit_threshold" yaml:"early_exit_threshold" json:"early_exit_threshold"`
	Weights            scoring.Weights      `mapstructure:"weights"              yaml:"weights"              json:"weights"`
	Block              scoring.BlockWeights `mapstructure:"block"                yaml:"block"                json:"block"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format"      yaml:"format"      json:"format"`
	File       string `mapstructure:"file"        yaml:"file"        json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers   int      `mapstructure:"workers"   yaml:"workers"   json:"workers"`
	Recursive bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include   []string `mapstructure:"include"   yaml:"include"   json:"include"`
	Exclude   []string `mapstructure:"exclude"   yaml:"exclude"   json:"exclude"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Recognizer: recognizer.DefaultConfig(),
		Frame:      frame.DefaultOptions(),
		Variants:   variant.DefaultFactors(),
		Scoring: ScoringConfig{
			EarlyExitThreshold: selection.DefaultEarlyExitThreshold,
			Weights:            scoring.DefaultWeights(),
			Block:              scoring.DefaultBlockWeights(),
		},
		Output: OutputConfig{Format: batch.FormatText},
		Server: server.DefaultConfig(),
	}
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{batch.FormatText, batch.FormatJSON, batch.FormatCSV}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		add("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		add("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if !slices.Contains(recognizer.Names(), c.Recognizer.Backend) {
		add("invalid recognizer backend: %s (must be one of: %s)", c.Recognizer.Backend, strings.Join(recognizer.Names(), ", "))
	}
	if c.Recognizer.Timeout <= 0 {
		add("invalid recognizer timeout: %v (must be positive)", c.Recognizer.Timeout)
	}

	for name, v := range map[string]float64{
		"enhanced contrast": c.Variants.EnhancedContrast,
		"high contrast":     c.Variants.HighContrast,
		"upscale":           c.Variants.Upscale,
	} {
		if v <= 0 {
			add("invalid %s factor: %.2f (must be positive)", name, v)
		}
	}
	if t := c.Scoring.EarlyExitThreshold; t <= 0 || t > 1 {
		add("invalid early exit threshold: %.2f (must be in (0, 1])", t)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		add("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.Timeout <= 0 {
		add("invalid server timeout: %v (must be positive)", c.Server.Timeout)
	}
	if c.Batch.Workers < 0 {
		add("invalid batch workers: %d (must not be negative)", c.Batch.Workers)
	}

	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level; Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// FrameConfig returns the tunables for frame.New.
func (c *Config) FrameConfig(logger *slog.Logger) frame.Config {
	return frame.Config{
		Factors:            c.Variants,
		Weights:            c.Scoring.Weights,
		BlockWeights:       c.Scoring.Block,
		EarlyExitThreshold: c.Scoring.EarlyExitThreshold,
		Logger:             logger,
	}
}

// BatchOptions returns the settings for batch.ProcessBatch.
func (c *Config) BatchOptions() *batch.Config {
	return &batch.Config{
		Options:         c.Frame,
		Workers:         c.Batch.Workers,
		Recursive:       c.Batch.Recursive,
		IncludePatterns: c.Batch.Include,
		ExcludePatterns: c.Batch.Exclude,
		OverlayDir:      c.Output.OverlayDir,
	}
}
