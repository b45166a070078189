// Package enhance implements the pixel-level transforms applied to camera
// frames before text recognition: desaturation, contrast stretching and
// rescaling. All functions operate on 8-bit non-premultiplied RGBA buffers.
package enhance

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrInvalidArgument is returned for scale factors or dimensions that cannot
// produce a valid buffer.
var ErrInvalidArgument = errors.New("invalid argument")

// Error describes a failed enhancement operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enhance %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Luminance weights of the saturation-zero color matrix.
const (
	weightR = 0.213
	weightG = 0.715
	weightB = 0.072
)

// contrastPivot is the channel value left unchanged by any contrast factor.
const contrastPivot = 128

// MaxDimension bounds either side of a scaled buffer.
const MaxDimension = 16384

// Normalize returns a deep NRGBA copy of img with its bounds moved to the
// origin. The result never aliases the source pixels.
func Normalize(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	return imaging.Clone(img)
}

// ToGrayscale returns a new buffer with every pixel desaturated. Alpha is
// preserved and the source is left untouched.
func ToGrayscale(img *image.NRGBA) *image.NRGBA {
	checkBuffer(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		y := weightR*float64(c.R) + weightG*float64(c.G) + weightB*float64(c.B)
		v := clampChannel(math.Round(y))
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

// AdjustContrast stretches each color channel around the midpoint in place:
// c' = clamp(0, 255, round((c-128)*factor + 128)). Alpha is untouched, a
// factor of 1 is the identity and negative factors invert the channels.
func AdjustContrast(img *image.NRGBA, factor float64) {
	checkBuffer(img)
	lut := contrastTable(factor)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}

// Scale returns a new buffer of round(w*fx) x round(h*fy) pixels resampled
// with a bilinear filter. Neither side may exceed MaxDimension.
func Scale(img *image.NRGBA, fx, fy float64) (*image.NRGBA, error) {
	checkBuffer(img)
	if !validFactor(fx) || !validFactor(fy) {
		return nil, &Error{Op: "scale", Err: fmt.Errorf("%w: factors %v x %v", ErrInvalidArgument, fx, fy)}
	}

	fw := math.Round(float64(img.Rect.Dx()) * fx)
	fh := math.Round(float64(img.Rect.Dy()) * fy)
	if fw < 1 || fh < 1 || fw > MaxDimension || fh > MaxDimension {
		return nil, &Error{Op: "scale", Err: fmt.Errorf("%w: target size %.0fx%.0f", ErrInvalidArgument, fw, fh)}
	}
	w, h := int(fw), int(fh)

	return imaging.Resize(img, w, h, imaging.Linear), nil
}

func contrastTable(factor float64) [256]uint8 {
	var lut [256]uint8
	for c := range lut {
		v := math.Round((float64(c)-contrastPivot)*factor + contrastPivot)
		if math.IsNaN(v) {
			// 0*Inf at the pivot
			lut[c] = uint8(c)
			continue
		}
		lut[c] = clampChannel(v)
	}
	return lut
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func validFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// checkBuffer panics when the pixel slice cannot hold the declared bounds.
func checkBuffer(img *image.NRGBA) {
	if img == nil {
		panic("enhance: nil buffer")
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	if img.Stride < w*4 || len(img.Pix) < (h-1)*img.Stride+w*4 {
		panic(fmt.Sprintf("enhance: pixel buffer of %d bytes does not cover %dx%d", len(img.Pix), w, h))
	}
}
