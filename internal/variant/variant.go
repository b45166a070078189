// Package variant derives the ordered set of enhanced candidate buffers that
// are submitted to a recognizer for a single frame.
package variant

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/frameocr/internal/enhance"
)

// Kind identifies how a variant was derived. It is used for diagnostics only.
type Kind string

const (
	KindIdentity          Kind = "identity"
	KindGrayscaleContrast Kind = "grayscale-contrast"
	KindHighContrast      Kind = "high-contrast"
	KindUpscaled          Kind = "upscaled"
)

// Variant is one candidate buffer. ScaleX and ScaleY record the factor
// between the variant and the source so that recognized geometry can be
// mapped back to source coordinates.
type Variant struct {
	Kind   Kind
	Image  *image.NRGBA
	ScaleX float64
	ScaleY float64
}

// Factors holds the enhancement parameters used for each variant.
type Factors struct {
	EnhancedContrast float64 `mapstructure:"enhanced_contrast" yaml:"enhanced_contrast" json:"enhanced_contrast"`
	HighContrast     float64 `mapstructure:"high_contrast"     yaml:"high_contrast"     json:"high_contrast"`
	Upscale          float64 `mapstructure:"upscale"           yaml:"upscale"           json:"upscale"`
}

// DefaultFactors returns the stock variant parameters.
func DefaultFactors() Factors {
	return Factors{
		EnhancedContrast: 1.5,
		HighContrast:     2.0,
		Upscale:          2.0,
	}
}

// Generator produces variants from a source frame.
type Generator struct {
	factors Factors
}

// NewGenerator creates a generator. Zero factors fall back to the defaults.
func NewGenerator(f Factors) *Generator {
	def := DefaultFactors()
	if f.EnhancedContrast == 0 {
		f.EnhancedContrast = def.EnhancedContrast
	}
	if f.HighContrast == 0 {
		f.HighContrast = def.HighContrast
	}
	if f.Upscale == 0 {
		f.Upscale = def.Upscale
	}
	return &Generator{factors: f}
}

// Generate returns the candidates in evaluation order: the unmodified copy,
// grayscale with moderate contrast, strong contrast in color, and the
// upscaled copy. With multiple set to false only the grayscale variant is
// produced. Every returned buffer is independently owned.
func (g *Generator) Generate(src image.Image, multiple bool) ([]Variant, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, &enhance.Error{Op: "generate", Err: fmt.Errorf("%w: empty source", enhance.ErrInvalidArgument)}
	}

	base := enhance.Normalize(src)

	if !multiple {
		return []Variant{g.enhanced(base)}, nil
	}

	variants := make([]Variant, 0, 4)
	variants = append(variants, Variant{Kind: KindIdentity, Image: enhance.Normalize(base), ScaleX: 1, ScaleY: 1})
	variants = append(variants, g.enhanced(base))

	high := enhance.Normalize(base)
	enhance.AdjustContrast(high, g.factors.HighContrast)
	variants = append(variants, Variant{Kind: KindHighContrast, Image: high, ScaleX: 1, ScaleY: 1})

	up, err := enhance.Scale(base, g.factors.Upscale, g.factors.Upscale)
	if err != nil {
		return nil, err
	}
	variants = append(variants, Variant{
		Kind:   KindUpscaled,
		Image:  up,
		ScaleX: float64(up.Rect.Dx()) / float64(base.Rect.Dx()),
		ScaleY: float64(up.Rect.Dy()) / float64(base.Rect.Dy()),
	})

	return variants, nil
}

func (g *Generator) enhanced(base *image.NRGBA) Variant {
	gray := enhance.ToGrayscale(base)
	enhance.AdjustContrast(gray, g.factors.EnhancedContrast)
	return Variant{Kind: KindGrayscaleContrast, Image: gray, ScaleX: 1, ScaleY: 1}
}
