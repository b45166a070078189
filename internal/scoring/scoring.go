// Package scoring estimates how trustworthy a recognition result is. The
// recognizer reports no confidence of its own, so the score is derived from
// the amount of text, its structure and the consistency of its layout.
package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// Weights parameterizes the result heuristic.
type Weights struct {
	LengthDivisor        float64 `mapstructure:"length_divisor"         yaml:"length_divisor"         json:"length_divisor"`
	LengthCap            float64 `mapstructure:"length_cap"             yaml:"length_cap"             json:"length_cap"`
	BlockDivisor         float64 `mapstructure:"block_divisor"          yaml:"block_divisor"          json:"block_divisor"`
	BlockCap             float64 `mapstructure:"block_cap"              yaml:"block_cap"              json:"block_cap"`
	LocalizationCap      float64 `mapstructure:"localization_cap"       yaml:"localization_cap"       json:"localization_cap"`
	ConsistencyBonus     float64 `mapstructure:"consistency_bonus"      yaml:"consistency_bonus"      json:"consistency_bonus"`
	ConsistencyMinBlocks int     `mapstructure:"consistency_min_blocks" yaml:"consistency_min_blocks" json:"consistency_min_blocks"`
	MaxVariation         float64 `mapstructure:"max_variation"          yaml:"max_variation"          json:"max_variation"`
}

// BlockWeights parameterizes the per-block heuristic.
type BlockWeights struct {
	Base        float64 `mapstructure:"base"         yaml:"base"         json:"base"`
	LineDivisor float64 `mapstructure:"line_divisor" yaml:"line_divisor" json:"line_divisor"`
	LineCap     float64 `mapstructure:"line_cap"     yaml:"line_cap"     json:"line_cap"`
	BoxBonus    float64 `mapstructure:"box_bonus"    yaml:"box_bonus"    json:"box_bonus"`
	WordDivisor float64 `mapstructure:"word_divisor" yaml:"word_divisor" json:"word_divisor"`
	WordCap     float64 `mapstructure:"word_cap"     yaml:"word_cap"     json:"word_cap"`
}

// DefaultWeights returns the stock result weights.
func DefaultWeights() Weights {
	return Weights{
		LengthDivisor:        50,
		LengthCap:            0.5,
		BlockDivisor:         10,
		BlockCap:             0.2,
		LocalizationCap:      0.3,
		ConsistencyBonus:     0.1,
		ConsistencyMinBlocks: 3,
		MaxVariation:         0.5,
	}
}

// DefaultBlockWeights returns the stock block weights.
func DefaultBlockWeights() BlockWeights {
	return BlockWeights{
		Base:        0.5,
		LineDivisor: 10,
		LineCap:     0.2,
		BoxBonus:    0.1,
		WordDivisor: 20,
		WordCap:     0.2,
	}
}

// Scorer computes heuristic confidence values in [0, 1].
type Scorer struct {
	w  Weights
	bw BlockWeights
}

// New returns a scorer using the given weights.
func New(w Weights, bw BlockWeights) *Scorer {
	return &Scorer{w: w, bw: bw}
}

// Default returns a scorer with the stock weights.
func Default() *Scorer {
	return New(DefaultWeights(), DefaultBlockWeights())
}

// Score rates a whole recognition result. A result without text scores 0.
func (s *Scorer) Score(r *ocrtext.Result) float64 {
	if r.Empty() {
		return 0
	}

	score := ratio(float64(utf8.RuneCountInString(r.Text)), s.w.LengthDivisor, s.w.LengthCap)

	n := len(r.Blocks)
	score += ratio(float64(n), s.w.BlockDivisor, s.w.BlockCap)

	if n > 0 {
		boxed := 0
		for _, b := range r.Blocks {
			if b.Box != nil {
				boxed++
			}
		}
		score += math.Min(float64(boxed)/float64(n), s.w.LocalizationCap)
	}

	if n >= s.w.ConsistencyMinBlocks && s.consistent(r.Blocks) {
		score += s.w.ConsistencyBonus
	}

	return math.Min(score, 1.0)
}

// BlockScore rates a single block. A block without text scores 0.
func (s *Scorer) BlockScore(b ocrtext.Block) float64 {
	if b.Text == "" {
		return 0
	}

	score := s.bw.Base
	score += ratio(float64(len(b.Lines)), s.bw.LineDivisor, s.bw.LineCap)
	if b.Box != nil {
		score += s.bw.BoxBonus
	}
	score += ratio(float64(b.WordCount()), s.bw.WordDivisor, s.bw.WordCap)

	return math.Min(score, 1.0)
}

// consistent reports whether either the per-block line counts or the
// heights of the localized blocks vary little.
func (s *Scorer) consistent(blocks []ocrtext.Block) bool {
	if len(blocks) < 2 {
		return true
	}

	lineCounts := make([]float64, 0, len(blocks))
	heights := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		lineCounts = append(lineCounts, float64(len(b.Lines)))
		if b.Box != nil {
			heights = append(heights, b.Box.Height)
		}
	}

	return s.lowVariation(lineCounts) || s.lowVariation(heights)
}

// lowVariation treats an empty or zero-mean sequence as uniform.
func (s *Scorer) lowVariation(values []float64) bool {
	if len(values) == 0 {
		return true
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return true
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(values))) / mean
	return cv < s.w.MaxVariation
}

func ratio(v, divisor, limit float64) float64 {
	if divisor <= 0 {
		return limit
	}
	return math.Min(v/divisor, limit)
}
