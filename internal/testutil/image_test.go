package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFrameConfig(t *testing.T) {
	cfg := DefaultFrameConfig()
	assert.Equal(t, []string{"HELLO WORLD"}, cfg.Lines)
	assert.Equal(t, SmallSize, cfg.Size)
	assert.Equal(t, color.White, cfg.Background)
	assert.Equal(t, color.Black, cfg.Foreground)
	assert.NotNil(t, cfg.FontFace)
}

func TestGenerateFrame(t *testing.T) {
	img := TextFrame("HELLO")
	assert.Equal(t, SmallSize.Width, img.Bounds().Dx())
	assert.Equal(t, SmallSize.Height, img.Bounds().Dy())

	dark := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 128 {
			dark++
		}
	}
	assert.Positive(t, dark, "text must leave ink on the frame")
}

func TestGenerateFrame_Rotated(t *testing.T) {
	cfg := DefaultFrameConfig()
	cfg.Rotation = 90
	img := GenerateFrame(cfg)
	assert.Equal(t, SmallSize.Height, img.Bounds().Dx())
}

func TestBlankFrame(t *testing.T) {
	img := BlankFrame(4, 3, color.White)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, uint8(255), img.Pix[0])
}

func TestSaveImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frame.png")
	SaveImage(t, TextFrame("A"), path)
	require.True(t, FileExists(path))
}
