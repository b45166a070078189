package imageio

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// Overlay colors.
var (
	BlockColor = color.RGBA{R: 255, A: 255}
	LineColor  = color.RGBA{G: 160, A: 255}
	WordColor  = color.RGBA{B: 255, A: 255}
)

// DrawOverlay returns a copy of img with the block, line and word boxes of
// blocks outlined.
func DrawOverlay(img image.Image, blocks []ocrtext.Block) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, blk := range blocks {
		for _, l := range blk.Lines {
			for _, w := range l.Words {
				DrawRect(dst, toRect(w.Box), WordColor, 1)
			}
			DrawRect(dst, toRect(l.Box), LineColor, 1)
		}
		DrawRect(dst, toRect(blk.Box), BlockColor, 2)
	}
	return dst
}

// SaveOverlay writes DrawOverlay's output as PNG.
func SaveOverlay(path string, img image.Image, blocks []ocrtext.Block) error {
	f, err := os.Create(path) //nolint:gosec // G304: output path chosen by the user
	if err != nil {
		return &Error{Op: "overlay", Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, DrawOverlay(img, blocks)); err != nil {
		return &Error{Op: "overlay", Err: err}
	}
	return f.Close()
}

// DrawRect draws an axis-aligned rectangle outline into dst.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := range thickness {
		yTop, yBot := rect.Min.Y+t, rect.Max.Y-1-t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
		xLeft, xRight := rect.Min.X+t, rect.Max.X-1-t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}

func toRect(b *ocrtext.Box) image.Rectangle {
	if b == nil {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(b.X)),
		int(math.Floor(b.Y)),
		int(math.Ceil(b.X+b.Width)),
		int(math.Ceil(b.Y+b.Height)),
	)
}
