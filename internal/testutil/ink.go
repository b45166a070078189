package testutil

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync/atomic"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// InkRecognizer is a deterministic stand-in for a text engine. It finds
// dark pixels, groups them into lines by row projection, splits lines into
// words on wide column gaps and starts a new block whenever the vertical gap
// exceeds twice the height of the previous line. Recognized text comes from Script
// in reading order; unscripted lines get placeholder words.
type InkRecognizer struct {
	Script []string
	// Threshold is the luminance below which a pixel counts as ink.
	Threshold uint8

	calls atomic.Int64
}

// NewInkRecognizer returns a recognizer answering with the given lines.
func NewInkRecognizer(script ...string) *InkRecognizer {
	return &InkRecognizer{Script: script, Threshold: 128}
}

// Calls returns how many frames were recognized.
func (r *InkRecognizer) Calls() int { return int(r.calls.Load()) }

type span struct{ start, end int } // [start, end)

// Recognize implements recognizer.Recognizer.
func (r *InkRecognizer) Recognize(ctx context.Context, img image.Image) (*ocrtext.Result, error) {
	r.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("ink recognizer: nil image")
	}

	ink := r.inkMask(img)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rows := runs(h, func(y int) bool {
		for x := range w {
			if ink[y*w+x] {
				return true
			}
		}
		return false
	}, 2)
	if len(rows) == 0 {
		return &ocrtext.Result{}, nil
	}

	var (
		blocks  []ocrtext.Block
		current *ocrtext.Block
		prev    span
		lineNo  int
		allText []string
	)
	for i, row := range rows {
		line := r.readLine(ink, w, row, lineNo)
		lineNo++

		if current == nil || row.start-prev.end > 2*(prev.end-prev.start) {
			if current != nil {
				blocks = append(blocks, finishBlock(*current))
			}
			current = &ocrtext.Block{}
		}
		current.Lines = append(current.Lines, line)
		allText = append(allText, line.Text)
		prev = rows[i]
	}
	blocks = append(blocks, finishBlock(*current))

	return &ocrtext.Result{Text: strings.Join(allText, "\n"), Blocks: blocks}, nil
}

func (r *InkRecognizer) readLine(ink []bool, w int, row span, n int) ocrtext.Line {
	height := row.end - row.start
	gap := max(3, height*2/3)

	cols := runs(w, func(x int) bool {
		for y := row.start; y < row.end; y++ {
			if ink[y*w+x] {
				return true
			}
		}
		return false
	}, gap)

	var scripted []string
	if n < len(r.Script) {
		scripted = strings.Fields(r.Script[n])
	}

	words := make([]ocrtext.Word, 0, len(cols))
	for i, c := range cols {
		text := fmt.Sprintf("W%d", i+1)
		if len(scripted) == len(cols) {
			text = scripted[i]
		}
		words = append(words, ocrtext.Word{Text: text, Box: box(c.start, row.start, c.end, row.end)})
	}

	text := joinWordTexts(words)
	if n < len(r.Script) && len(scripted) != len(cols) {
		text = r.Script[n]
	}
	return ocrtext.Line{
		Text:  text,
		Box:   box(cols[0].start, row.start, cols[len(cols)-1].end, row.end),
		Words: words,
	}
}

func (r *InkRecognizer) inkMask(img image.Image) []bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	limit := uint32(r.Threshold)
	if limit == 0 {
		limit = 128
	}
	for y := range h {
		for x := range w {
			cr, cg, cb, ca := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if ca == 0 {
				continue
			}
			lum := (299*(cr>>8) + 587*(cg>>8) + 114*(cb>>8)) / 1000
			mask[y*w+x] = lum < limit
		}
	}
	return mask
}

// runs groups consecutive indexes in [0, n) where set is true. Runs closer
// than minGap are merged.
func runs(n int, set func(int) bool, minGap int) []span {
	var out []span
	for i := 0; i < n; i++ {
		if !set(i) {
			continue
		}
		start := i
		for i < n && set(i) {
			i++
		}
		if len(out) > 0 && start-out[len(out)-1].end < minGap {
			out[len(out)-1].end = i
			continue
		}
		out = append(out, span{start: start, end: i})
	}
	return out
}

func finishBlock(b ocrtext.Block) ocrtext.Block {
	texts := make([]string, 0, len(b.Lines))
	minX, minY := b.Lines[0].Box.X, b.Lines[0].Box.Y
	maxX, maxY := minX+b.Lines[0].Box.Width, minY+b.Lines[0].Box.Height
	for _, l := range b.Lines {
		texts = append(texts, l.Text)
		minX = min(minX, l.Box.X)
		minY = min(minY, l.Box.Y)
		maxX = max(maxX, l.Box.X+l.Box.Width)
		maxY = max(maxY, l.Box.Y+l.Box.Height)
	}
	b.Text = strings.Join(texts, "\n")
	b.Box = &ocrtext.Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	return b
}

func box(x0, y0, x1, y1 int) *ocrtext.Box {
	return &ocrtext.Box{X: float64(x0), Y: float64(y0), Width: float64(x1 - x0), Height: float64(y1 - y0)}
}

func joinWordTexts(words []ocrtext.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
