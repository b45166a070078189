package cmd

import (
	"encoding/csv"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

func TestBatchCommand(t *testing.T) {
	endpoint := recognitionServer(t, "HELLO")
	dir := t.TempDir()
	saveFrame(t, dir, "a.png", testutil.TextFrame("HELLO"))
	saveFrame(t, dir, "b.png", testutil.BlankFrame(80, 40, color.White))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o750))
	saveFrame(t, filepath.Join(dir, "nested"), "c.png", testutil.TextFrame("HELLO"))

	t.Run("flat csv", func(t *testing.T) {
		out, err := execute(t, "batch", "--endpoint", endpoint, "--format", "csv", "--workers", "2", dir)
		require.NoError(t, err)
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, filepath.Join(dir, "a.png"), rows[1][0])
		assert.Equal(t, "HELLO", rows[1][4])
		assert.Equal(t, filepath.Join(dir, "b.png"), rows[2][0])
		assert.Empty(t, rows[2][4])
	})

	t.Run("recursive to file with stats", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.txt")
		out, err := execute(t, "batch", "--endpoint", endpoint, "--recursive", "--exclude", "b.*",
			"--output", target, "--stats", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "Total images: 2")

		written, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(written), "HELLO"))
	})

	t.Run("no images", func(t *testing.T) {
		_, err := execute(t, "batch", "--endpoint", endpoint, t.TempDir())
		require.ErrorContains(t, err, "no image files found")
	})
}
