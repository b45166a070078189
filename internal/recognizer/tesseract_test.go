//go:build tesseract

package recognizer

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

func TestToRegions(t *testing.T) {
	regions := toRegions([]gosseract.BoundingBox{
		{Box: image.Rect(1, 2, 30, 14), Word: " HELLO\n", Confidence: 91},
		{Box: image.Rect(40, 2, 80, 14), Word: "WORLD", Confidence: 88},
	})

	require.Len(t, regions, 2)
	assert.Equal(t, "HELLO", regions[0].text)
	assert.Equal(t, image.Rect(1, 2, 30, 14), regions[0].rect)
	assert.Equal(t, "WORLD", regions[1].text)

	assert.Empty(t, toRegions(nil))
}

// bigTextFrame renders lines large enough for Tesseract to read reliably.
func bigTextFrame(lines ...string) image.Image {
	cfg := testutil.DefaultFrameConfig()
	cfg.Lines = lines
	src := testutil.GenerateFrame(cfg)
	return imaging.Resize(src, src.Bounds().Dx()*3, src.Bounds().Dy()*3, imaging.Linear)
}

func TestTesseract_Recognize(t *testing.T) {
	rec, err := New(Config{Backend: BackendTesseract, Languages: []string{"eng"}, PageSegMode: 3})
	require.NoError(t, err)

	res, err := rec.Recognize(context.Background(), bigTextFrame("HELLO WORLD"))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Contains(t, strings.ToUpper(res.Text), "HELLO")
	require.NotEmpty(t, res.Blocks)
	block := res.Blocks[0]
	require.NotNil(t, block.Box)
	assert.Positive(t, block.Box.Width)
	assert.NotEmpty(t, block.Lines)
}

func TestTesseract_BlankFrame(t *testing.T) {
	rec, err := New(Config{Backend: BackendTesseract})
	require.NoError(t, err)

	res, err := rec.Recognize(context.Background(), testutil.BlankFrame(300, 120, color.White))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestTesseract_Canceled(t *testing.T) {
	rec, err := New(Config{Backend: BackendTesseract})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rec.Recognize(ctx, bigTextFrame("X"))
	require.ErrorIs(t, err, context.Canceled)
}
