// Package frame is the entry point for recognizing text in a single camera
// frame. It wires variant generation, recognition and selection together
// according to per-invocation options and shapes the caller-facing result.
package frame

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/enhance"
	"github.com/MeKo-Tech/frameocr/internal/recognizer"
	"github.com/MeKo-Tech/frameocr/internal/scoring"
	"github.com/MeKo-Tech/frameocr/internal/selection"
	"github.com/MeKo-Tech/frameocr/internal/variant"
)

// Config holds the tunables of a Processor.
type Config struct {
	Factors            variant.Factors
	Weights            scoring.Weights
	BlockWeights       scoring.BlockWeights
	EarlyExitThreshold float64
	Logger             *slog.Logger
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		Factors:            variant.DefaultFactors(),
		Weights:            scoring.DefaultWeights(),
		BlockWeights:       scoring.DefaultBlockWeights(),
		EarlyExitThreshold: selection.DefaultEarlyExitThreshold,
	}
}

// Outcome describes how a frame was processed. Result is nil when no text
// was found.
type Outcome struct {
	Result   *Result       `json:"result"`
	Variant  variant.Kind  `json:"variant,omitempty"`
	Attempts int           `json:"attempts"`
	Score    float64       `json:"score"`
	Duration time.Duration `json:"duration_ns"`
}

// Processor recognizes frames. It keeps no per-frame state and may be used
// from multiple goroutines for independent frames.
type Processor struct {
	rec        recognizer.Recognizer
	generator  *variant.Generator
	scorer     *scoring.Scorer
	controller *selection.Controller
	logger     *slog.Logger
}

// New creates a Processor around rec. Zero-valued sections of cfg fall
// back to their defaults.
func New(rec recognizer.Recognizer, cfg Config) *Processor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.EarlyExitThreshold
	if threshold == 0 {
		threshold = selection.DefaultEarlyExitThreshold
	}

	if cfg.Weights == (scoring.Weights{}) {
		cfg.Weights = scoring.DefaultWeights()
	}
	if cfg.BlockWeights == (scoring.BlockWeights{}) {
		cfg.BlockWeights = scoring.DefaultBlockWeights()
	}

	scorer := scoring.New(cfg.Weights, cfg.BlockWeights)
	return &Processor{
		rec:        rec,
		generator:  variant.NewGenerator(cfg.Factors),
		scorer:     scorer,
		controller: selection.NewController(scorer, selection.WithThreshold(threshold), selection.WithLogger(logger)),
		logger:     logger,
	}
}

// Process recognizes text in img. Only invalid input is reported as an
// error; recognizer failures and frames without text yield an Outcome with
// a nil Result.
func (p *Processor) Process(ctx context.Context, img image.Image, opts Options) (*Outcome, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &enhance.Error{Op: "process", Err: fmt.Errorf("%w: empty frame", enhance.ErrInvalidArgument)}
	}

	start := time.Now()
	p.logger.Debug("Processing frame",
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"include_boxes", opts.IncludeBoxes,
		"include_confidence", opts.IncludeConfidence,
		"use_image_processing", opts.UseImageProcessing,
		"multiple_attempts", opts.MultipleAttempts)

	var out *Outcome
	switch {
	case !opts.UseImageProcessing:
		out = p.direct(ctx, variant.KindIdentity, enhance.Normalize(img), opts)

	case !opts.MultipleAttempts:
		variants, err := p.generator.Generate(img, false)
		if err != nil {
			return nil, err
		}
		out = p.direct(ctx, variants[0].Kind, variants[0].Image, opts)

	default:
		variants, err := p.generator.Generate(img, true)
		if err != nil {
			return nil, err
		}
		out = &Outcome{Attempts: len(variants)}
		if best := p.controller.SelectBest(ctx, variants, p.rec); best != nil {
			out = &Outcome{
				Result:   buildResult(best.Text, best.Score, opts, p.scorer),
				Variant:  best.Variant,
				Attempts: best.Attempts,
				Score:    best.Score,
			}
		}
	}

	out.Duration = time.Since(start)
	p.logger.Debug("Frame processed",
		"found", out.Result != nil,
		"variant", out.Variant,
		"attempts", out.Attempts,
		"score", out.Score,
		"duration_ms", out.Duration.Milliseconds())
	return out, nil
}

// direct runs a single recognition without scoring. Confidence, when
// requested, is reported as 0.
func (p *Processor) direct(ctx context.Context, kind variant.Kind, img *image.NRGBA, opts Options) *Outcome {
	out := &Outcome{Attempts: 1}

	res, err := p.rec.Recognize(ctx, img)
	if err != nil {
		p.logger.Error("Recognizer failed", "variant", kind, "error", err)
		return out
	}
	if res.Empty() {
		return out
	}

	out.Result = buildResult(res, 0, opts, p.scorer)
	out.Variant = kind
	return out
}

// Recognize is a convenience wrapper that discards processing metadata.
func (p *Processor) Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	out, err := p.Process(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}
