package recognizer

import (
	"image"
	"strings"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// region is a flat engine box at one layout level.
type region struct {
	text string
	rect image.Rectangle
}

// assemble nests flat block, line and word regions into a hierarchy. A
// child belongs to the first parent containing its center. Parents left
// without text take the joined text of their children.
func assemble(blocks, lines, words []region) []ocrtext.Block {
	lineWords := make([][]ocrtext.Word, len(lines))
	for _, w := range words {
		if i := owner(lines, w.rect); i >= 0 {
			lineWords[i] = append(lineWords[i], ocrtext.Word{Text: w.text, Box: toBox(w.rect)})
		}
	}

	blockLines := make([][]ocrtext.Line, len(blocks))
	for i, l := range lines {
		j := owner(blocks, l.rect)
		if j < 0 {
			continue
		}
		line := ocrtext.Line{Text: l.text, Box: toBox(l.rect), Words: lineWords[i]}
		if line.Text == "" {
			line.Text = joinWords(line.Words)
		}
		blockLines[j] = append(blockLines[j], line)
	}

	out := make([]ocrtext.Block, 0, len(blocks))
	for i, b := range blocks {
		block := ocrtext.Block{Text: b.text, Box: toBox(b.rect), Lines: blockLines[i]}
		if block.Text == "" {
			parts := make([]string, 0, len(block.Lines))
			for _, l := range block.Lines {
				parts = append(parts, l.Text)
			}
			block.Text = strings.Join(parts, "\n")
		}
		if block.Text == "" {
			continue
		}
		out = append(out, block)
	}
	return out
}

func owner(parents []region, child image.Rectangle) int {
	center := image.Pt((child.Min.X+child.Max.X)/2, (child.Min.Y+child.Max.Y)/2)
	for i, p := range parents {
		if center.In(p.rect) {
			return i
		}
	}
	return -1
}

func toBox(r image.Rectangle) *ocrtext.Box {
	if r.Empty() {
		return nil
	}
	return &ocrtext.Box{X: float64(r.Min.X), Y: float64(r.Min.Y), Width: float64(r.Dx()), Height: float64(r.Dy())}
}

func joinWords(words []ocrtext.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
