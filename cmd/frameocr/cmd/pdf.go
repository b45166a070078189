package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/frameocr/internal/batch"
	"github.com/MeKo-Tech/frameocr/internal/pdf"
)

// pdfCmd recognizes the images embedded in PDF files.
var pdfCmd = &cobra.Command{
	Use:   "pdf [flags] FILE...",
	Short: "Recognize text in images embedded in PDF files",
	Long: `Extract the images embedded in each PDF and recognize them as frames.

Examples:
  frameocr pdf scan.pdf
  frameocr pdf scan.pdf --pages 1-3,5 --format json
  frameocr pdf locked.pdf --password secret
  frameocr pdf report.pdf --text-layer`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPDF,
}

func init() {
	addFrameFlags(pdfCmd)
	f := pdfCmd.Flags()
	f.StringP("format", "f", "", "output format (text, json)")
	f.String("pages", "", "page range, e.g. 1-3,5 (default all pages)")
	f.String("password", "", "user password for encrypted PDFs")
	f.String("owner-password", "", "owner password for encrypted PDFs")
	f.Bool("text-layer", false, "also report the embedded text layer of each page")
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	proc, err := newFrameProcessor(cfg)
	if err != nil {
		return err
	}

	opts := frameOptions(cmd, cfg.Frame)
	ext := pdf.ExtractOptions{
		Pages:         stringFlag(cmd, "pages", ""),
		UserPassword:  stringFlag(cmd, "password", ""),
		OwnerPassword: stringFlag(cmd, "owner-password", ""),
	}
	ext.TextLayer, _ = cmd.Flags().GetBool("text-layer")

	processor := pdf.NewProcessor(proc)
	docs := make([]*pdf.DocumentResult, 0, len(args))
	for _, file := range args {
		doc, err := processor.ProcessFile(cmd.Context(), file, ext, opts)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", file, err)
		}
		docs = append(docs, doc)
	}

	out := cmd.OutOrStdout()
	switch format := stringFlag(cmd, "format", cfg.Output.Format); format {
	case batch.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"documents": docs})
	case batch.FormatText, "":
		for i, doc := range docs {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "# %s\n", doc.Filename)
			if text := doc.Text(); len(text) > 0 {
				_, _ = fmt.Fprintln(out, strings.Join(text, "\n"))
			} else {
				_, _ = fmt.Fprintln(out, "(no text)")
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q for pdf", format)
	}
}
