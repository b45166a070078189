package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test frame sizes.
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{640, 480}
)

// FrameConfig describes a synthetic camera frame with printed text.
type FrameConfig struct {
	// Lines are drawn top to bottom. An empty entry leaves a gap of three
	// line heights, which starts a new text block.
	Lines       []string
	Size        ImageSize
	Margin      int
	LineSpacing int
	Background  color.Color
	Foreground  color.Color
	FontFace    font.Face
	Rotation    float64 // degrees
}

// DefaultFrameConfig returns a white frame with one line of black text.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		Lines:       []string{"HELLO WORLD"},
		Size:        SmallSize,
		Margin:      20,
		LineSpacing: 6,
		Background:  color.White,
		Foreground:  color.Black,
		FontFace:    basicfont.Face7x13,
	}
}

// GenerateFrame renders cfg into a new RGBA image.
func GenerateFrame(cfg FrameConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Size.Width, cfg.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	face := cfg.FontFace
	if face == nil {
		face = basicfont.Face7x13
	}
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{cfg.Foreground}, Face: face}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	y := cfg.Margin + metrics.Ascent.Ceil()
	for _, line := range cfg.Lines {
		if line == "" {
			y += 3 * lineHeight
			continue
		}
		drawer.Dot = fixed.P(cfg.Margin, y)
		drawer.DrawString(line)
		y += lineHeight + cfg.LineSpacing
	}

	if cfg.Rotation != 0 {
		rotated := imaging.Rotate(img, cfg.Rotation, cfg.Background)
		rgba := image.NewRGBA(rotated.Bounds())
		draw.Draw(rgba, rgba.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
		return rgba
	}
	return img
}

// TextFrame renders lines with the default layout.
func TextFrame(lines ...string) *image.RGBA {
	cfg := DefaultFrameConfig()
	cfg.Lines = lines
	return GenerateFrame(cfg)
}

// BlankFrame returns a uniformly colored frame.
func BlankFrame(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "Failed to encode PNG image")
	return buf.Bytes()
}

// SaveImage saves an image as PNG to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, os.MkdirAll(dir, 0o750), "Failed to create directory %s", dir)
	require.NoError(t, os.WriteFile(path, EncodePNG(t, img), 0o600), "Failed to write %s", path)
}
