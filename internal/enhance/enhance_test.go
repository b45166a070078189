package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAdjustContrast_Examples(t *testing.T) {
	tests := []struct {
		name   string
		in     uint8
		factor float64
		want   uint8
	}{
		{"identity", 77, 1.0, 77},
		{"stretch up", 200, 1.5, 236},
		{"stretch down", 100, 1.5, 86},
		{"clamp high", 250, 2.0, 255},
		{"clamp low", 10, 2.0, 0},
		{"pivot stays", 128, 2.0, 128},
		{"zero factor flattens", 12, 0, 128},
		{"negative inverts", 138, -1.0, 118},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newFilled(2, 2, color.NRGBA{R: tt.in, G: tt.in, B: tt.in, A: 99})
			AdjustContrast(img, tt.factor)
			px := img.NRGBAAt(1, 1)
			assert.Equal(t, tt.want, px.R)
			assert.Equal(t, tt.want, px.G)
			assert.Equal(t, tt.want, px.B)
			assert.Equal(t, uint8(99), px.A, "alpha must be untouched")
		})
	}
}

func TestAdjustContrast_SubImageOnlyTouchesBounds(t *testing.T) {
	base := newFilled(4, 4, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	sub, ok := base.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	require.True(t, ok)

	AdjustContrast(sub, 2.0)

	assert.Equal(t, uint8(255), base.NRGBAAt(1, 1).R)
	assert.Equal(t, uint8(255), base.NRGBAAt(2, 2).R)
	assert.Equal(t, uint8(200), base.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(200), base.NRGBAAt(3, 3).R)
}

func TestAdjustContrast_PanicsOnShortBuffer(t *testing.T) {
	img := &image.NRGBA{Pix: make([]uint8, 8), Stride: 16, Rect: image.Rect(0, 0, 4, 4)}
	assert.Panics(t, func() { AdjustContrast(img, 1.5) })
}

func TestToGrayscale(t *testing.T) {
	src := newFilled(3, 2, color.NRGBA{R: 255, G: 0, B: 0, A: 180})
	gray := ToGrayscale(src)

	require.NotNil(t, gray)
	assert.Equal(t, src.Bounds(), gray.Bounds())

	px := gray.NRGBAAt(0, 0)
	assert.Equal(t, uint8(54), px.R) // round(0.213 * 255)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.R, px.B)
	assert.Equal(t, uint8(180), px.A)

	assert.Equal(t, uint8(255), src.NRGBAAt(0, 0).R, "source must not be modified")
}

func TestToGrayscale_WhiteStaysWhite(t *testing.T) {
	gray := ToGrayscale(newFilled(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, gray.NRGBAAt(0, 0))
}

func TestScale(t *testing.T) {
	src := newFilled(10, 6, color.NRGBA{R: 40, G: 80, B: 120, A: 255})

	up, err := Scale(src, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, up.Bounds().Dx())
	assert.Equal(t, 12, up.Bounds().Dy())

	odd, err := Scale(src, 0.25, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3, odd.Bounds().Dx()) // round(2.5)
	assert.Equal(t, 3, odd.Bounds().Dy())
}

func TestScale_MaxDimension(t *testing.T) {
	src := newFilled(4, 2, color.NRGBA{A: 255})

	out, err := Scale(src, MaxDimension/4, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, out.Bounds().Dx())
	assert.Equal(t, 2, out.Bounds().Dy())
}

func TestScale_InvalidArguments(t *testing.T) {
	src := newFilled(4, 4, color.NRGBA{A: 255})

	tests := []struct {
		name   string
		fx, fy float64
	}{
		{"zero x", 0, 1},
		{"negative y", 1, -2},
		{"collapses to zero", 0.1, 0.1},
		{"too wide", MaxDimension, 1},
		{"huge", 1e5, 1e5},
		{"overflows int", 1e300, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Scale(src, tt.fx, tt.fy)
			require.Error(t, err)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrInvalidArgument)

			var enhErr *Error
			require.ErrorAs(t, err, &enhErr)
			assert.Equal(t, "scale", enhErr.Op)
		})
	}
}

func TestNormalize_DeepCopy(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	out := Normalize(src)
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 3, 2), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, out.NRGBAAt(0, 0))

	out.SetNRGBA(0, 0, color.NRGBA{})
	assert.Equal(t, uint8(10), src.RGBAAt(5, 5).R)

	assert.Nil(t, Normalize(nil))
}
