package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/imageio"
)

type job struct {
	index int
	path  string
}

type jobResult struct {
	index int
	item  ItemResult
	err   error
}

// processFiles fans files out to a fixed set of workers. Frames are
// independent; each worker runs its own selections sequentially.
func processFiles(ctx context.Context, frames FrameProcessor, files []string, cfg *Config) ([]ItemResult, error) {
	progress := cfg.Progress
	if progress == nil {
		progress = noopProgress{}
	}
	workers := cfg.workers(len(files))

	jobs := make(chan job, workers)
	results := make(chan jobResult, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				item, err := processFile(ctx, frames, j.path, cfg)
				results <- jobResult{index: j.index, item: item, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case jobs <- job{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	progress.OnStart(len(files))
	items := make([]ItemResult, len(files))
	done := 0
	for r := range results {
		items[r.index] = r.item
		if r.err != nil {
			progress.OnError(r.item.File, r.err)
		}
		done++
		progress.OnProgress(done, len(files))
	}
	progress.OnComplete()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// processFile records failures in the item so the batch continues.
func processFile(ctx context.Context, frames FrameProcessor, path string, cfg *Config) (ItemResult, error) {
	start := time.Now()
	item := ItemResult{File: path}
	fail := func(err error) (ItemResult, error) {
		item.Error = err.Error()
		item.DurationMs = time.Since(start).Milliseconds()
		return item, err
	}

	img, _, err := imageio.LoadImage(path)
	if err != nil {
		return fail(err)
	}

	out, err := frames.Process(ctx, img, cfg.Options)
	if err != nil {
		return fail(err)
	}
	item.Result = out.Result
	item.Variant = string(out.Variant)
	item.Attempts = out.Attempts
	item.Score = out.Score

	if cfg.OverlayDir != "" && out.Result != nil {
		if err := saveOverlay(cfg.OverlayDir, path, img, out.Result); err != nil {
			slog.Warn("Failed to save overlay", "file", path, "error", err)
		}
	}

	item.DurationMs = time.Since(start).Milliseconds()
	return item, nil
}

func saveOverlay(dir, path string, img image.Image, res *frame.Result) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	target := filepath.Join(dir, base+"_overlay.png")
	if err := imageio.SaveOverlay(target, img, res.OverlayBlocks()); err != nil {
		return fmt.Errorf("overlay %s: %w", target, err)
	}
	return nil
}
