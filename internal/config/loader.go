package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "frameocr"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "FRAMEOCR"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance, which is where
// the CLI binds its flags.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader on v.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads configFile, or searches the standard paths when it is empty,
// applies defaults and environment overrides and validates the result. A
// missing file in the search paths is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	cfg, err := l.LoadWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation is Load without the final Validate.
func (l *Loader) LoadWithoutValidation(configFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		for _, p := range GetConfigSearchPaths() {
			l.v.AddConfigPath(p)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// setupEnvironmentVariables maps keys like server.port to FRAMEOCR_SERVER_PORT.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("recognizer.backend", d.Recognizer.Backend)
	l.v.SetDefault("recognizer.endpoint", d.Recognizer.Endpoint)
	l.v.SetDefault("recognizer.timeout", d.Recognizer.Timeout)
	l.v.SetDefault("recognizer.languages", d.Recognizer.Languages)
	l.v.SetDefault("recognizer.page_seg_mode", d.Recognizer.PageSegMode)
	l.v.SetDefault("recognizer.clean_text", d.Recognizer.CleanText)

	l.v.SetDefault("frame.include_boxes", d.Frame.IncludeBoxes)
	l.v.SetDefault("frame.include_confidence", d.Frame.IncludeConfidence)
	l.v.SetDefault("frame.use_image_processing", d.Frame.UseImageProcessing)
	l.v.SetDefault("frame.multiple_attempts", d.Frame.MultipleAttempts)

	l.v.SetDefault("variants.enhanced_contrast", d.Variants.EnhancedContrast)
	l.v.SetDefault("variants.high_contrast", d.Variants.HighContrast)
	l.v.SetDefault("variants.upscale", d.Variants.Upscale)

	l.v.SetDefault("scoring.early_exit_threshold", d.Scoring.EarlyExitThreshold)
	w := d.Scoring.Weights
	l.v.SetDefault("scoring.weights.length_divisor", w.LengthDivisor)
	l.v.SetDefault("scoring.weights.length_cap", w.LengthCap)
	l.v.SetDefault("scoring.weights.block_divisor", w.BlockDivisor)
	l.v.SetDefault("scoring.weights.block_cap", w.BlockCap)
	l.v.SetDefault("scoring.weights.localization_cap", w.LocalizationCap)
	l.v.SetDefault("scoring.weights.consistency_bonus", w.ConsistencyBonus)
	l.v.SetDefault("scoring.weights.consistency_min_blocks", w.ConsistencyMinBlocks)
	l.v.SetDefault("scoring.weights.max_variation", w.MaxVariation)
	bw := d.Scoring.Block
	l.v.SetDefault("scoring.block.base", bw.Base)
	l.v.SetDefault("scoring.block.line_divisor", bw.LineDivisor)
	l.v.SetDefault("scoring.block.line_cap", bw.LineCap)
	l.v.SetDefault("scoring.block.box_bonus", bw.BoxBonus)
	l.v.SetDefault("scoring.block.word_divisor", bw.WordDivisor)
	l.v.SetDefault("scoring.block.word_cap", bw.WordCap)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.file", d.Output.File)
	l.v.SetDefault("output.overlay_dir", d.Output.OverlayDir)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout", d.Server.Timeout)
	l.v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	l.v.SetDefault("server.rate_limit.requests_per_minute", d.Server.RateLimit.RequestsPerMinute)
	l.v.SetDefault("server.rate_limit.requests_per_hour", d.Server.RateLimit.RequestsPerHour)
	l.v.SetDefault("server.rate_limit.max_requests_per_day", d.Server.RateLimit.MaxRequestsPerDay)
	l.v.SetDefault("server.rate_limit.max_data_per_day", d.Server.RateLimit.MaxDataPerDay)

	l.v.SetDefault("batch.workers", d.Batch.Workers)
	l.v.SetDefault("batch.recursive", d.Batch.Recursive)
	l.v.SetDefault("batch.include", d.Batch.Include)
	l.v.SetDefault("batch.exclude", d.Batch.Exclude)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	paths = append(paths, "/etc/frameocr")
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(configDir, "frameocr"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "frameocr"))
	}
	return paths
}
