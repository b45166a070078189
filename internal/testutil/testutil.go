package testutil

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// WriteFrames saves frames as PNG files below a new temp directory and
// returns it. Keys are paths relative to that directory.
func WriteFrames(t *testing.T, frames map[string]image.Image) string {
	t.Helper()

	dir := t.TempDir()
	for name, img := range frames {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		SaveImage(t, img, path)
	}
	return dir
}
