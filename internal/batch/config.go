package batch

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/frame"
)

// Config holds all configuration for batch processing.
type Config struct {
	Options frame.Options

	// Parallel processing settings
	Workers int // 0 = runtime.NumCPU()

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Output
	OverlayDir string

	// Progress settings
	Progress ProgressCallback
}

// DefaultConfig returns defaults for batch processing.
func DefaultConfig() *Config {
	return &Config{Options: frame.DefaultOptions()}
}

func (c *Config) workers(jobs int) int {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, jobs))
}

// ItemResult is the outcome for one file.
type ItemResult struct {
	File       string        `json:"file"`
	Result     *frame.Result `json:"result"`
	Variant    string        `json:"variant,omitempty"`
	Attempts   int           `json:"attempts"`
	Score      float64       `json:"score"`
	DurationMs int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// Result holds the result of batch processing.
type Result struct {
	Items       []ItemResult
	Duration    time.Duration
	WorkerCount int
}

// Stats summarizes a batch.
type Stats struct {
	Total            int
	WithText         int
	WithoutText      int
	Failed           int
	WorkerCount      int
	TotalDuration    time.Duration
	AveragePerImage  time.Duration
	ThroughputPerSec float64
}

// Stats computes summary statistics.
func (r *Result) Stats() Stats {
	s := Stats{Total: len(r.Items), WorkerCount: r.WorkerCount, TotalDuration: r.Duration}
	for _, it := range r.Items {
		switch {
		case it.Error != "":
			s.Failed++
		case it.Result != nil:
			s.WithText++
		default:
			s.WithoutText++
		}
	}
	if s.Total > 0 {
		s.AveragePerImage = r.Duration / time.Duration(s.Total)
	}
	if r.Duration > 0 {
		s.ThroughputPerSec = float64(s.Total) / r.Duration.Seconds()
	}
	return s
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Items, format)
}

// WriteResults writes the formatted results to w.
func (r *Result) WriteResults(w io.Writer, format string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	_, err = io.WriteString(w, output)
	return err
}

// PrintStats prints processing statistics to w.
func (r *Result) PrintStats(w io.Writer) {
	s := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  With text: %d\n", s.WithText)
	_, _ = fmt.Fprintf(w, "  Without text: %d\n", s.WithoutText)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", s.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", s.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per image: %v\n", s.AveragePerImage.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f images/sec\n", s.ThroughputPerSec)
}
