// Package selection runs each enhancement variant of a frame through a
// recognizer and keeps the result with the highest heuristic score.
package selection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
	"github.com/MeKo-Tech/frameocr/internal/recognizer"
	"github.com/MeKo-Tech/frameocr/internal/variant"
)

// DefaultEarlyExitThreshold stops evaluation once the best score exceeds it.
const DefaultEarlyExitThreshold = 0.8

// Scorer rates recognition results.
type Scorer interface {
	Score(r *ocrtext.Result) float64
}

// RecognizerError records a failed recognizer call for one variant.
type RecognizerError struct {
	Variant variant.Kind
	Err     error
}

func (e *RecognizerError) Error() string {
	return fmt.Sprintf("recognize %s variant: %v", e.Variant, e.Err)
}

func (e *RecognizerError) Unwrap() error { return e.Err }

// ScoredResult is the winning recognition of a frame.
type ScoredResult struct {
	Text     *ocrtext.Result
	Score    float64
	Variant  variant.Kind
	Attempts int
}

// Controller evaluates variants strictly in order, one recognizer call at a
// time.
type Controller struct {
	scorer    Scorer
	threshold float64
	logger    *slog.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithThreshold sets the early exit threshold.
func WithThreshold(t float64) Option {
	return func(c *Controller) { c.threshold = t }
}

// WithLogger sets the logger used for per-variant diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller using scorer.
func NewController(scorer Scorer, opts ...Option) *Controller {
	c := &Controller{
		scorer:    scorer,
		threshold: DefaultEarlyExitThreshold,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SelectBest recognizes each variant in turn and returns the best scored
// result, or nil when no variant produced text. A failing recognizer call
// only skips its variant. Geometry from scaled variants is mapped back to
// source coordinates before scoring.
func (c *Controller) SelectBest(ctx context.Context, variants []variant.Variant, rec recognizer.Recognizer) *ScoredResult {
	var best *ScoredResult
	attempts := 0

	for _, v := range variants {
		attempts++

		res, err := rec.Recognize(ctx, v.Image)
		if err != nil {
			c.logger.Warn("Recognizer failed, skipping variant",
				"error", &RecognizerError{Variant: v.Kind, Err: err})
			continue
		}
		if res.Empty() {
			c.logger.Debug("Variant produced no text", "variant", v.Kind)
			continue
		}

		if v.ScaleX != 1 || v.ScaleY != 1 {
			res = res.Rescale(v.ScaleX, v.ScaleY)
		}

		score := c.scorer.Score(res)
		c.logger.Debug("Variant scored",
			"variant", v.Kind,
			"score", score,
			"text_length", len(res.Text))

		if best == nil || score > best.Score {
			best = &ScoredResult{Text: res, Score: score, Variant: v.Kind}
		}
		if best.Score > c.threshold {
			c.logger.Debug("Early exit", "variant", best.Variant, "score", best.Score)
			break
		}
	}

	if best != nil {
		best.Attempts = attempts
	}
	return best
}
