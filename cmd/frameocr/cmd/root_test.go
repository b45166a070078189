package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "frameocr", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--endpoint")
}

func TestRootCommandVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: unknown")
}

func TestRootCommandSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"image", "batch", "pdf", "serve", "config"} {
		assert.Contains(t, names, expected)
	}
}

func TestRootCommandInvalidConfig(t *testing.T) {
	_, err := execute(t, "config", "show", "--config", "/does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestRootCommandUnknownBackend(t *testing.T) {
	_, err := execute(t, "image", "--backend", "magic", "frame.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recognizer backend")
}
