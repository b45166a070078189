package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(items []ItemResult, format string) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(items)
	case FormatCSV:
		return formatCSV(items)
	case FormatText, "":
		return formatText(items), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func formatJSON(items []ItemResult) (string, error) {
	out := struct {
		Images []ItemResult `json:"images"`
	}{Images: items}
	if out.Images == nil {
		out.Images = []ItemResult{}
	}
	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts), err
}

// formatCSV emits one row per block, or a single row for files without blocks.
func formatCSV(items []ItemResult) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	header := []string{"file", "variant", "score", "block_index", "text", "x", "y", "width", "height", "error"}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, it := range items {
		score := fmt.Sprintf("%.3f", it.Score)
		if it.Result == nil || len(it.Result.Blocks) == 0 {
			text := ""
			if it.Result != nil {
				text = it.Result.Text
			}
			if err := writer.Write([]string{it.File, it.Variant, score, "", text, "", "", "", "", it.Error}); err != nil {
				return "", err
			}
			continue
		}
		for j, b := range it.Result.Blocks {
			row := []string{it.File, it.Variant, score, strconv.Itoa(j), b.Text, "", "", "", "", it.Error}
			if b.Box != nil {
				row[5] = strconv.FormatFloat(b.Box.X, 'f', -1, 64)
				row[6] = strconv.FormatFloat(b.Box.Y, 'f', -1, 64)
				row[7] = strconv.FormatFloat(b.Box.Width, 'f', -1, 64)
				row[8] = strconv.FormatFloat(b.Box.Height, 'f', -1, 64)
			}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(items []ItemResult) string {
	var output strings.Builder
	for i, it := range items {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("# %s\n", it.File))
		switch {
		case it.Error != "":
			output.WriteString(fmt.Sprintf("error: %s\n", it.Error))
		case it.Result == nil:
			output.WriteString("(no text)\n")
		default:
			output.WriteString(it.Result.Text)
			output.WriteString("\n")
		}
	}
	return output.String()
}
