package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteFrames(t *testing.T) {
	dir := WriteFrames(t, map[string]image.Image{
		"top.png":        TextFrame("TOP"),
		"nested/low.png": BlankFrame(10, 10, color.White),
	})

	assert.True(t, FileExists(filepath.Join(dir, "top.png")))
	assert.True(t, FileExists(filepath.Join(dir, "nested", "low.png")))
	assert.True(t, DirExists(filepath.Join(dir, "nested")))
	assert.False(t, DirExists(filepath.Join(dir, "top.png")))
	assert.False(t, FileExists(filepath.Join(dir, "missing.png")))
}
