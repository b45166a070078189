// Package imageio loads frames from disk or memory and renders recognition
// overlays.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// Error describes a failed load or decode.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("image %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return slices.Contains(SupportedImageExtensions, strings.ToLower(filepath.Ext(path)))
}

// Metadata captures lightweight file and pixel information.
type Metadata struct {
	Path      string `json:"path,omitempty"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (image.Image, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, &Error{Op: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, Metadata{}, &Error{Op: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, Metadata{}, &Error{Op: "load", Err: err}
	}

	img, meta, err := DecodeImage(data)
	if err != nil {
		return nil, Metadata{}, err
	}
	meta.Path = path
	return img, meta, nil
}

// DecodeImage decodes an encoded frame held in memory.
func DecodeImage(data []byte) (image.Image, Metadata, error) {
	if len(data) == 0 {
		return nil, Metadata{}, &Error{Op: "decode", Err: errors.New("empty image data")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Metadata{}, &Error{Op: "decode", Err: err}
	}
	b := img.Bounds()
	return img, Metadata{
		Format:    format,
		SizeBytes: int64(len(data)),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}
