package frame

import (
	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
	"github.com/MeKo-Tech/frameocr/internal/scoring"
)

// Result is the caller-facing recognition of one frame. A frame without
// text has no Result at all.
type Result struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Blocks     []Block  `json:"blocks,omitempty"`
}

// Block is one text block of a Result.
type Block struct {
	Text       string         `json:"text"`
	Confidence *float64       `json:"confidence,omitempty"`
	Box        *ocrtext.Box   `json:"box,omitempty"`
	Lines      []ocrtext.Line `json:"lines,omitempty"`
}

func buildResult(text *ocrtext.Result, score float64, opts Options, scorer *scoring.Scorer) *Result {
	if text.Empty() {
		return nil
	}

	out := &Result{Text: text.Text}
	if opts.IncludeConfidence {
		out.Confidence = ptr(score)
	}
	if !opts.IncludeBoxes || len(text.Blocks) == 0 {
		return out
	}

	out.Blocks = make([]Block, 0, len(text.Blocks))
	for _, b := range text.Blocks {
		block := Block{Text: b.Text, Box: b.Box}
		if opts.IncludeConfidence {
			block.Confidence = ptr(scorer.BlockScore(b))
		}
		if len(b.Lines) > 0 {
			block.Lines = b.Lines
		}
		out.Blocks = append(out.Blocks, block)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// OverlayBlocks converts the blocks back to recognizer blocks for drawing.
func (r *Result) OverlayBlocks() []ocrtext.Block {
	if r == nil {
		return nil
	}
	out := make([]ocrtext.Block, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		out = append(out, ocrtext.Block{Text: b.Text, Box: b.Box, Lines: b.Lines})
	}
	return out
}
