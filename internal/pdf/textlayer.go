package pdf

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractTextLayer reads the embedded (vector) text of the selected pages.
// Pages without a text layer are omitted from the map. Scanned documents
// usually return an empty map, their text lives in the images.
func ExtractTextLayer(filename, pageRange string) (map[int]string, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	reader, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %q: %w", filename, err)
	}

	total := reader.NumPage()
	if len(pageNumbers) == 0 {
		for i := 1; i <= total; i++ {
			pageNumbers = append(pageNumbers, i)
		}
	}

	out := make(map[int]string)
	for _, n := range pageNumbers {
		if n < 1 || n > total {
			continue
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		if text := strings.TrimSpace(pageText(page)); text != "" {
			out[n] = text
		}
	}
	return out, nil
}

// pageText joins the rows of a page, falling back to the plain text stream
// when row grouping fails.
func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var sb strings.Builder
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, t := range row.Content {
				if s := strings.TrimSpace(t.S); s != "" {
					words = append(words, s)
				}
			}
			if len(words) > 0 {
				sb.WriteString(strings.Join(words, " "))
				sb.WriteByte('\n')
			}
		}
		return sb.String()
	}

	plain, err := page.GetPlainText(make(map[string]*pdf.Font))
	if err != nil {
		return ""
	}
	return plain
}
