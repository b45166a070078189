// Package recognizer connects the frame pipeline to text recognition
// engines. Engines are looked up by name in a registry of backend
// factories; every backend satisfies the same single-image interface.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

var (
	// ErrUnknownBackend is returned when no factory is registered under the requested name.
	ErrUnknownBackend = errors.New("recognizer: unknown backend")
	// ErrNoBackend is returned for backends that were not compiled into this binary.
	ErrNoBackend = errors.New("recognizer: backend not linked; rebuild with the matching build tag")
)

// Recognizer extracts structured text from one image. Implementations may
// block; the pipeline never calls a single Recognizer concurrently for the
// same frame.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*ocrtext.Result, error)
}

// Func adapts a plain function to the Recognizer interface.
type Func func(ctx context.Context, img image.Image) (*ocrtext.Result, error)

// Recognize calls f.
func (f Func) Recognize(ctx context.Context, img image.Image) (*ocrtext.Result, error) {
	return f(ctx, img)
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend     string        `mapstructure:"backend"       yaml:"backend"       json:"backend"`
	Endpoint    string        `mapstructure:"endpoint"      yaml:"endpoint"      json:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"       json:"timeout"`
	Languages   []string      `mapstructure:"languages"     yaml:"languages"     json:"languages"`
	PageSegMode int           `mapstructure:"page_seg_mode" yaml:"page_seg_mode" json:"page_seg_mode"`
	CleanText   bool          `mapstructure:"clean_text"    yaml:"clean_text"    json:"clean_text"`
}

// DefaultConfig returns the default backend settings.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendRemote,
		Endpoint:    "http://localhost:8090/recognize",
		Timeout:     10 * time.Second,
		Languages:   []string{"eng"},
		PageSegMode: 3,
		CleanText:   true,
	}
}

// Backend names.
const (
	BackendRemote    = "remote"
	BackendTesseract = "tesseract"
)

// Factory builds a backend from its configuration.
type Factory func(cfg Config) (Recognizer, error)

// Backends is the registry of known backend factories.
var Backends = map[string]Factory{
	BackendRemote:    newRemote,
	BackendTesseract: newTesseract,
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Backends))
	for name := range Backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New resolves cfg.Backend in the registry. When cfg.CleanText is set the
// returned recognizer normalizes all text it produces.
func New(cfg Config) (Recognizer, error) {
	factory, ok := Backends[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBackend, cfg.Backend, Names())
	}
	rec, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.Backend, err)
	}
	if cfg.CleanText {
		rec = WithCleaning(rec, ocrtext.DefaultCleanOptions())
	}
	return rec, nil
}

// WithCleaning wraps rec so that every result passes through ocrtext cleaning.
func WithCleaning(rec Recognizer, opts ocrtext.CleanOptions) Recognizer {
	return Func(func(ctx context.Context, img image.Image) (*ocrtext.Result, error) {
		res, err := rec.Recognize(ctx, img)
		if err != nil || res == nil {
			return res, err
		}
		res.Clean(opts)
		return res, nil
	})
}
