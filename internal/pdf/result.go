package pdf

import "github.com/MeKo-Tech/frameocr/internal/frame"

// ImageResult is the recognition of one embedded image.
type ImageResult struct {
	ImageIndex int           `json:"image_index"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Result     *frame.Result `json:"result"`
	Variant    string        `json:"variant,omitempty"`
	Attempts   int           `json:"attempts"`
	Error      string        `json:"error,omitempty"`
}

// PageResult groups the images of one page.
type PageResult struct {
	PageNumber int           `json:"page_number"`
	TextLayer  string        `json:"text_layer,omitempty"`
	Images     []ImageResult `json:"images"`
}

// DocumentResult is the recognition of a whole PDF.
type DocumentResult struct {
	Filename   string         `json:"filename"`
	Pages      []PageResult   `json:"pages"`
	Processing ProcessingInfo `json:"processing"`
}

// ProcessingInfo contains timing information.
type ProcessingInfo struct {
	ExtractionTimeMs  int64 `json:"extraction_time_ms"`
	RecognitionTimeMs int64 `json:"recognition_time_ms"`
	TotalTimeMs       int64 `json:"total_time_ms"`
}

// Text lists the text of every page in order: the embedded text layer first,
// then the recognized text of each image.
func (d *DocumentResult) Text() []string {
	var out []string
	for _, p := range d.Pages {
		if p.TextLayer != "" {
			out = append(out, p.TextLayer)
		}
		for _, img := range p.Images {
			if img.Result != nil {
				out = append(out, img.Result.Text)
			}
		}
	}
	return out
}
