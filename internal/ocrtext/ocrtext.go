// Package ocrtext defines the structured text returned by a recognizer: the
// full text plus an optional block / line / word hierarchy with bounding
// boxes in image pixel coordinates.
package ocrtext

// Box is an axis-aligned rectangle in pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Word is the smallest recognized element.
type Word struct {
	Text string `json:"text"`
	Box  *Box   `json:"box,omitempty"`
}

// Line is a run of words on one baseline.
type Line struct {
	Text  string `json:"text"`
	Box   *Box   `json:"box,omitempty"`
	Words []Word `json:"words,omitempty"`
}

// Block is a paragraph-like group of lines. A nil Box means the recognizer
// could not localize the block.
type Block struct {
	Text  string `json:"text"`
	Box   *Box   `json:"box,omitempty"`
	Lines []Line `json:"lines,omitempty"`
}

// Result is the output of one recognition call.
type Result struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Empty reports whether r carries no text.
func (r *Result) Empty() bool {
	return r == nil || r.Text == ""
}

// WordCount returns the number of words across all lines of the block.
func (b Block) WordCount() int {
	n := 0
	for _, l := range b.Lines {
		n += len(l.Words)
	}
	return n
}

// Scaled returns a copy of the box divided by the given factors.
func (b *Box) Scaled(sx, sy float64) *Box {
	if b == nil {
		return nil
	}
	return &Box{X: b.X / sx, Y: b.Y / sy, Width: b.Width / sx, Height: b.Height / sy}
}

// Rescale returns a deep copy of r with every box divided by sx and sy. It
// maps geometry recognized on a resized buffer back to the source frame.
func (r *Result) Rescale(sx, sy float64) *Result {
	if r == nil {
		return nil
	}
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	out := &Result{Text: r.Text}
	if len(r.Blocks) == 0 {
		return out
	}

	out.Blocks = make([]Block, len(r.Blocks))
	for i, b := range r.Blocks {
		nb := Block{Text: b.Text, Box: b.Box.Scaled(sx, sy)}
		if len(b.Lines) > 0 {
			nb.Lines = make([]Line, len(b.Lines))
			for j, l := range b.Lines {
				nl := Line{Text: l.Text, Box: l.Box.Scaled(sx, sy)}
				if len(l.Words) > 0 {
					nl.Words = make([]Word, len(l.Words))
					for k, w := range l.Words {
						nl.Words[k] = Word{Text: w.Text, Box: w.Box.Scaled(sx, sy)}
					}
				}
				nb.Lines[j] = nl
			}
		}
		out.Blocks[i] = nb
	}
	return out
}
