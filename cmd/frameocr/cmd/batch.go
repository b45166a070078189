package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/frameocr/internal/batch"
)

// batchCmd recognizes every frame found under files and directories.
var batchCmd = &cobra.Command{
	Use:   "batch [flags] PATH...",
	Short: "Recognize many frames in parallel",
	Long: `Discover images under the given files and directories and recognize
them with a pool of workers. Results keep discovery order; a file that
fails to load is reported and does not stop the batch.

Examples:
  frameocr batch ./frames
  frameocr batch ./frames --recursive --include '*.png' --format json
  frameocr batch ./frames --workers 8 --progress --stats`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	addFrameFlags(batchCmd)
	f := batchCmd.Flags()
	f.StringP("format", "f", "", "output format (text, json, csv)")
	f.StringP("output", "o", "", "write results to this file instead of stdout")
	f.String("overlay-dir", "", "write box overlays as PNG into this directory")
	f.IntP("workers", "w", 0, "number of workers (0 = number of CPUs)")
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.StringSlice("include", nil, "only process files whose name matches one of these globs")
	f.StringSlice("exclude", nil, "skip files whose name matches one of these globs")
	f.Bool("progress", false, "show a progress bar on stderr")
	f.Bool("stats", false, "print processing statistics to stderr")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	proc, err := newFrameProcessor(cfg)
	if err != nil {
		return err
	}

	bc := cfg.BatchOptions()
	bc.Options = frameOptions(cmd, cfg.Frame)
	bc.OverlayDir = stringFlag(cmd, "overlay-dir", bc.OverlayDir)

	f := cmd.Flags()
	if f.Changed("workers") {
		bc.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("recursive") {
		bc.Recursive, _ = f.GetBool("recursive")
	}
	if f.Changed("include") {
		bc.IncludePatterns, _ = f.GetStringSlice("include")
	}
	if f.Changed("exclude") {
		bc.ExcludePatterns, _ = f.GetStringSlice("exclude")
	}
	if show, _ := f.GetBool("progress"); show {
		bc.Progress = batch.NewConsoleProgress(cmd.ErrOrStderr())
	}
	if bc.OverlayDir != "" {
		bc.Options.IncludeBoxes = true
		if err := os.MkdirAll(bc.OverlayDir, 0o750); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	res, err := batch.ProcessBatch(cmd.Context(), proc, args, bc)
	if err != nil {
		return err
	}

	format := stringFlag(cmd, "format", cfg.Output.Format)
	if err := writeResults(cmd, res, format, stringFlag(cmd, "output", cfg.Output.File)); err != nil {
		return err
	}
	if stats, _ := f.GetBool("stats"); stats {
		res.PrintStats(cmd.ErrOrStderr())
	}
	return nil
}
