// Package cmd implements the frameocr command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/frameocr/internal/config"
	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/recognizer"
	"github.com/MeKo-Tech/frameocr/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration, loaded before every command runs.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "frameocr",
	Short: "Camera frame text recognition with adaptive preprocessing",
	Long: `frameocr recognizes text in camera frames. Each frame is tried in up to
four preprocessed variants (original, grayscale with contrast, high contrast,
upscaled); the most plausible recognition wins and processing stops early
once a result is convincing.

Examples:
  frameocr image frame.png --boxes --confidence
  frameocr batch ./frames --recursive --format csv
  frameocr pdf scan.pdf --pages 1-3
  frameocr serve --port 8080`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		setupLogging(globalConfig.SlogLevel())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME, /etc/frameocr, $XDG_CONFIG_HOME/frameocr)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("backend", recognizer.BackendRemote, fmt.Sprintf("recognizer backend (%v)", recognizer.Names()))
	pf.String("endpoint", recognizer.DefaultConfig().Endpoint, "recognition endpoint for the remote backend")
	pf.StringSlice("languages", recognizer.DefaultConfig().Languages, "recognizer languages for the tesseract backend")

	bindings := map[string]string{
		"verbose":              "verbose",
		"log_level":            "log-level",
		"recognizer.backend":   "backend",
		"recognizer.endpoint":  "endpoint",
		"recognizer.languages": "languages",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

// initConfig reads the config file and environment into globalConfig.
func initConfig() error {
	configLoader = config.NewLoader()
	cfg, err := configLoader.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	globalConfig = cfg
	return nil
}

// setupLogging installs a JSON slog handler on stderr; stdout carries results.
func setupLogging(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		if err := initConfig(); err != nil {
			d := config.DefaultConfig()
			return &d
		}
	}
	return globalConfig
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// newFrameProcessor builds the recognizer and frame processor from cfg.
func newFrameProcessor(cfg *config.Config) (*frame.Processor, error) {
	rec, err := recognizer.New(cfg.Recognizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}
	return frame.New(rec, cfg.FrameConfig(slog.Default())), nil
}

// addFrameFlags registers the per-invocation frame options.
func addFrameFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("boxes", false, "include block boxes and lines in the result")
	f.Bool("confidence", false, "include result and block confidence")
	f.Bool("image-processing", true, "preprocess the frame before recognition")
	f.Bool("multiple-attempts", true, "try every preprocessing variant and keep the best")
}

// frameOptions overlays changed frame flags on the configured options.
func frameOptions(cmd *cobra.Command, base frame.Options) frame.Options {
	opts := base
	f := cmd.Flags()
	if f.Changed("boxes") {
		opts.IncludeBoxes, _ = f.GetBool("boxes")
	}
	if f.Changed("confidence") {
		opts.IncludeConfidence, _ = f.GetBool("confidence")
	}
	if f.Changed("image-processing") {
		opts.UseImageProcessing, _ = f.GetBool("image-processing")
	}
	if f.Changed("multiple-attempts") {
		opts.MultipleAttempts, _ = f.GetBool("multiple-attempts")
	}
	return opts
}

// stringFlag returns the flag value when set, otherwise fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}
