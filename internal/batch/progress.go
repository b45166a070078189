package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress while a batch runs. Calls are serialized
// by the pool.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(done, total int)
	OnError(file string, err error)
	OnComplete()
}

type noopProgress struct{}

func (noopProgress) OnStart(int)           {}
func (noopProgress) OnProgress(int, int)   {}
func (noopProgress) OnError(string, error) {}
func (noopProgress) OnComplete()           {}

// ConsoleProgress draws a progress bar.
type ConsoleProgress struct {
	writer         io.Writer
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
}

// NewConsoleProgress creates a bar on w, or stderr when w is nil.
func NewConsoleProgress(w io.Writer) *ConsoleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleProgress{writer: w, width: 40, updateInterval: 100 * time.Millisecond}
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "Processing %d images\n", total)
}

func (c *ConsoleProgress) OnProgress(done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && done < total {
		return
	}
	c.lastUpdate = now
	if total == 0 {
		return
	}

	filled := c.width * done / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	status := fmt.Sprintf("\r[%s] %d/%d (%.1f%%)", bar, done, total, float64(done)/float64(total)*100)

	if elapsed := now.Sub(c.startTime); elapsed > 0 && done > 0 {
		status += fmt.Sprintf(" %.1f/s", float64(done)/elapsed.Seconds())
		if done < total {
			eta := time.Duration(float64(elapsed) * float64(total-done) / float64(done))
			status += fmt.Sprintf(" ETA: %v", eta.Round(time.Second))
		}
	}
	_, _ = fmt.Fprint(c.writer, status)
}

func (c *ConsoleProgress) OnError(file string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\nError processing %s: %v\n", file, err)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\nCompleted in %v\n", time.Since(c.startTime).Round(time.Millisecond))
}

// LogProgress reports through slog every interval items.
type LogProgress struct {
	logger   *slog.Logger
	interval int

	lastLog   int
	startTime time.Time
}

// NewLogProgress creates a log based reporter; a nil logger means slog.Default.
func NewLogProgress(logger *slog.Logger, interval int) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10
	}
	return &LogProgress{logger: logger, interval: interval}
}

func (l *LogProgress) OnStart(total int) {
	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Info("Starting batch", "total", total)
}

func (l *LogProgress) OnProgress(done, total int) {
	if done-l.lastLog < l.interval && done != total {
		return
	}
	l.lastLog = done
	l.logger.Info("Batch progress", "done", done, "total", total,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgress) OnError(file string, err error) {
	l.logger.Error("Batch item failed", "file", file, "error", err)
}

func (l *LogProgress) OnComplete() {
	l.logger.Info("Batch completed", "elapsed", time.Since(l.startTime).Round(time.Millisecond))
}
