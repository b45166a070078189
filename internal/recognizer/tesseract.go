//go:build tesseract

package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/frameocr/internal/ocrtext"
)

// Tesseract runs the local Tesseract engine through gosseract. A fresh
// client is created per frame since gosseract clients are not safe for
// concurrent use.
type Tesseract struct {
	clientFactory func() *gosseract.Client
	languages     []string
	pageSegMode   int
}

func newTesseract(cfg Config) (Recognizer, error) {
	return &Tesseract{
		clientFactory: gosseract.NewClient,
		languages:     cfg.Languages,
		pageSegMode:   cfg.PageSegMode,
	}, nil
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*ocrtext.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(t.languages) > 0 {
		if err := c.SetLanguage(t.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if t.pageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(t.pageSegMode)); err != nil {
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &ocrtext.Result{}, nil
	}

	blocks, err := c.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("block boxes: %w", err)
	}
	lines, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("line boxes: %w", err)
	}
	words, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}

	return &ocrtext.Result{Text: text, Blocks: assemble(toRegions(blocks), toRegions(lines), toRegions(words))}, nil
}

func toRegions(boxes []gosseract.BoundingBox) []region {
	out := make([]region, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, region{text: strings.TrimSpace(b.Word), rect: b.Box})
	}
	return out
}
