package pdf

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/frame"
)

// FrameProcessor recognizes a single frame.
type FrameProcessor interface {
	Process(ctx context.Context, img image.Image, opts frame.Options) (*frame.Outcome, error)
}

// Processor runs every image of a PDF through a FrameProcessor.
type Processor struct {
	frames      FrameProcessor
	extract     func(filename string, opts ExtractOptions) ([]PageImages, error)
	extractText func(filename, pageRange string) (map[int]string, error)
	logger      *slog.Logger
}

// NewProcessor creates a PDF processor.
func NewProcessor(frames FrameProcessor) *Processor {
	return &Processor{frames: frames, extract: ExtractImages, extractText: ExtractTextLayer, logger: slog.Default()}
}

// ProcessFile extracts the images of filename and recognizes them one after
// another. A failure on one image is recorded in its ImageResult and does
// not stop the document.
func (p *Processor) ProcessFile(ctx context.Context, filename string, ext ExtractOptions, opts frame.Options) (*DocumentResult, error) {
	start := time.Now()

	pages, err := p.extract(filename, ext)
	if err != nil {
		return nil, err
	}
	extracted := time.Now()

	doc := &DocumentResult{Filename: filename, Pages: make([]PageResult, 0, len(pages))}
	for _, page := range pages {
		pr := PageResult{PageNumber: page.Page, Images: make([]ImageResult, 0, len(page.Images))}
		for i, img := range page.Images {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("pdf %s: %w", filename, err)
			}

			ir := ImageResult{ImageIndex: i, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
			out, err := p.frames.Process(ctx, img, opts)
			if err != nil {
				p.logger.Warn("Failed to process PDF image", "file", filename, "page", page.Page, "image", i, "error", err)
				ir.Error = err.Error()
			} else {
				ir.Result = out.Result
				ir.Variant = string(out.Variant)
				ir.Attempts = out.Attempts
			}
			pr.Images = append(pr.Images, ir)
		}
		doc.Pages = append(doc.Pages, pr)
	}

	if ext.TextLayer {
		p.attachTextLayer(doc, ext.Pages)
	}

	doc.Processing = ProcessingInfo{
		ExtractionTimeMs:  extracted.Sub(start).Milliseconds(),
		RecognitionTimeMs: time.Since(extracted).Milliseconds(),
		TotalTimeMs:       time.Since(start).Milliseconds(),
	}
	p.logger.Debug("PDF processed", "file", filename, "pages", len(doc.Pages), "duration_ms", doc.Processing.TotalTimeMs)
	return doc, nil
}

// attachTextLayer adds the embedded text to matching pages. Pages that carry
// text but no images are added without images. A failing text layer is
// logged and leaves the image results untouched.
func (p *Processor) attachTextLayer(doc *DocumentResult, pageRange string) {
	texts, err := p.extractText(doc.Filename, pageRange)
	if err != nil {
		p.logger.Warn("Failed to read PDF text layer", "file", doc.Filename, "error", err)
		return
	}

	for i := range doc.Pages {
		if text, ok := texts[doc.Pages[i].PageNumber]; ok {
			doc.Pages[i].TextLayer = text
			delete(texts, doc.Pages[i].PageNumber)
		}
	}
	if len(texts) == 0 {
		return
	}
	for n, text := range texts {
		doc.Pages = append(doc.Pages, PageResult{PageNumber: n, TextLayer: text, Images: []ImageResult{}})
	}
	slices.SortFunc(doc.Pages, func(a, b PageResult) int { return a.PageNumber - b.PageNumber })
}
