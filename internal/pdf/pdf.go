// Package pdf extracts the embedded raster images of a PDF and runs each of
// them through the frame pipeline as an independent frame.
package pdf

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/MeKo-Tech/frameocr/internal/imageio"
)

// ExtractOptions selects pages and supplies credentials for encrypted files.
type ExtractOptions struct {
	Pages         string // e.g. "1-3,5"; empty means all pages
	UserPassword  string
	OwnerPassword string
	TextLayer     bool // also read the embedded text of each page
}

// PageImages holds the images found on one page, in extraction order.
type PageImages struct {
	Page   int
	Images []image.Image
}

// ExtractImages extracts all images from a PDF file using pdfcpu and groups
// them by page, sorted by page number.
func ExtractImages(filename string, opts ExtractOptions) ([]PageImages, error) {
	pageNumbers, err := parsePageRange(opts.Pages)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", opts.Pages, err)
	}

	tempDir, err := os.MkdirTemp("", "frameocr-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	for _, n := range pageNumbers {
		pageStrings = append(pageStrings, strconv.Itoa(n))
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, extractConfig(opts)); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	return collectExtractedImages(tempDir)
}

func extractConfig(opts ExtractOptions) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if opts.UserPassword != "" {
		conf.UserPW = opts.UserPassword
	}
	if opts.OwnerPassword != "" {
		conf.OwnerPW = opts.OwnerPassword
	}
	return conf
}

// collectExtractedImages loads every decodable image in dir and groups it by
// the page number encoded in its file name. Files that are not page images
// or cannot be decoded are skipped.
func collectExtractedImages(dir string) ([]PageImages, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	byPage := make(map[int][]image.Image)
	for _, name := range names {
		page, err := parsePageFromFilename(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // G304: files written by pdfcpu into our temp dir
		if err != nil {
			continue
		}
		img, _, err := imageio.DecodeImage(data)
		if err != nil {
			continue
		}
		byPage[page] = append(byPage[page], img)
	}

	out := make([]PageImages, 0, len(byPage))
	for page, imgs := range byPage {
		out = append(out, PageImages{Page: page, Images: imgs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out, nil
}

// parsePageFromFilename accepts page_<n>_... as well as pdfcpu's
// <name>_<page>_<resource>.<ext>.
func parsePageFromFilename(filename string) (int, error) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(stem, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}

	if parts[0] == "page" {
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
			return n, nil
		}
		return 0, errors.New("invalid page number")
	}
	if len(parts) >= 3 {
		if n, err := strconv.Atoi(parts[len(parts)-2]); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errors.New("not a page file")
}

// parsePageRange parses a page range string like "1-5" or "1,3,5".
func parsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	var pages []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		for _, p := range tokenPages {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 || start > end {
			return nil, fmt.Errorf("invalid page range %d-%d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil || page < 1 {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}
