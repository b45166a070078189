// Package batch recognizes many frames from disk with a bounded worker
// pool. Each file is an independent frame; results keep input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/frame"
)

// FrameProcessor recognizes a single frame.
type FrameProcessor interface {
	Process(ctx context.Context, img image.Image, opts frame.Options) (*frame.Outcome, error)
}

// ErrNoImages is returned when discovery finds nothing to process.
var ErrNoImages = errors.New("no image files found")

// ProcessBatch discovers the images under paths and recognizes them.
func ProcessBatch(ctx context.Context, frames FrameProcessor, paths []string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	files, err := discoverImageFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	start := time.Now()
	items, err := processFiles(ctx, frames, files, cfg)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{
		Items:       items,
		Duration:    time.Since(start),
		WorkerCount: cfg.workers(len(files)),
	}, nil
}
