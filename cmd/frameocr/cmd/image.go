package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/frameocr/internal/batch"
	"github.com/MeKo-Tech/frameocr/internal/imageio"
)

// imageCmd recognizes one or more frames given as files.
var imageCmd = &cobra.Command{
	Use:   "image [flags] FILE...",
	Short: "Recognize text in image frames",
	Long: `Process images and print the recognized text of each frame.

Frames are processed one after another. A frame without text prints
"(no text)" in text format and a null result in JSON.

Examples:
  frameocr image frame.png
  frameocr image a.png b.jpg --format json --boxes --confidence
  frameocr image frame.png --overlay-dir ./overlays`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImage,
}

func init() {
	addFrameFlags(imageCmd)
	imageCmd.Flags().StringP("format", "f", "", "output format (text, json, csv)")
	imageCmd.Flags().StringP("output", "o", "", "write results to this file instead of stdout")
	imageCmd.Flags().String("overlay-dir", "", "write box overlays as PNG into this directory")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	proc, err := newFrameProcessor(cfg)
	if err != nil {
		return err
	}

	opts := frameOptions(cmd, cfg.Frame)
	overlayDir := stringFlag(cmd, "overlay-dir", cfg.Output.OverlayDir)
	if overlayDir != "" {
		opts.IncludeBoxes = true
		if err := os.MkdirAll(overlayDir, 0o750); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	start := time.Now()
	items := make([]batch.ItemResult, 0, len(args))
	for _, path := range args {
		item := batch.ItemResult{File: path}
		itemStart := time.Now()

		img, _, err := imageio.LoadImage(path)
		if err != nil {
			return err
		}
		out, err := proc.Process(cmd.Context(), img, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		item.Result = out.Result
		item.Variant = string(out.Variant)
		item.Attempts = out.Attempts
		item.Score = out.Score
		item.DurationMs = time.Since(itemStart).Milliseconds()

		if overlayDir != "" && out.Result != nil {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			target := filepath.Join(overlayDir, base+"_overlay.png")
			if err := imageio.SaveOverlay(target, img, out.Result.OverlayBlocks()); err != nil {
				slog.Warn("Failed to save overlay", "file", path, "error", err)
			}
		}
		items = append(items, item)
	}

	res := &batch.Result{Items: items, Duration: time.Since(start), WorkerCount: 1}
	format := stringFlag(cmd, "format", cfg.Output.Format)
	return writeResults(cmd, res, format, stringFlag(cmd, "output", cfg.Output.File))
}

// writeResults writes res to file, or to the command's stdout when file is empty.
func writeResults(cmd *cobra.Command, res *batch.Result, format, file string) error {
	var w io.Writer = cmd.OutOrStdout()
	if file != "" {
		f, err := os.Create(file) //nolint:gosec // G304: output path chosen by the user
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := res.WriteResults(w, format); err != nil {
		return err
	}
	if format == batch.FormatJSON && file == "" {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
