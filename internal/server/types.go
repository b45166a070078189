// Package server exposes frame recognition over HTTP and WebSocket.
package server

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/frameocr/internal/frame"
)

// FrameProcessor recognizes a single frame.
type FrameProcessor interface {
	Process(ctx context.Context, img image.Image, opts frame.Options) (*frame.Outcome, error)
}

// RateLimitConfig configures the optional per-client limiter. Zero limits
// are disabled.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled"              yaml:"enabled"              json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute"  yaml:"requests_per_minute"  json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour"    yaml:"requests_per_hour"    json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day"     yaml:"max_data_per_day"     json:"max_data_per_day"`
}

// Config holds server configuration.
type Config struct {
	Host        string          `mapstructure:"host"          yaml:"host"          json:"host"`
	Port        int             `mapstructure:"port"          yaml:"port"          json:"port"`
	CORSOrigin  string          `mapstructure:"cors_origin"   yaml:"cors_origin"   json:"cors_origin"`
	MaxUploadMB int64           `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	Timeout     time.Duration   `mapstructure:"timeout"       yaml:"timeout"       json:"timeout"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"    yaml:"rate_limit"    json:"rate_limit"`
}

// DefaultConfig returns the stock server settings.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        8080,
		CORSOrigin:  "*",
		MaxUploadMB: 20,
		Timeout:     30 * time.Second,
	}
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	frames      FrameProcessor
	defaults    frame.Options
	corsOrigin  string
	maxUpload   int64
	timeout     time.Duration
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// FrameResponse is the body of /ocr/frame and of WebSocket replies. Result
// is null when the frame had no text.
type FrameResponse struct {
	Type     string        `json:"type,omitempty"`
	ID       string        `json:"id,omitempty"`
	Success  bool          `json:"success"`
	Result   *frame.Result `json:"result"`
	Variant  string        `json:"variant,omitempty"`
	Attempts int           `json:"attempts"`
	Error    string        `json:"error,omitempty"`
}

// NewServer creates a server that recognizes frames with frames. Options
// not given by a request fall back to defaults.
func NewServer(frames FrameProcessor, defaults frame.Options, config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	d := DefaultConfig()
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = d.MaxUploadMB
	}
	if config.Timeout <= 0 {
		config.Timeout = d.Timeout
	}
	if config.CORSOrigin == "" {
		config.CORSOrigin = d.CORSOrigin
	}

	s := &Server{
		frames:     frames,
		defaults:   defaults,
		corsOrigin: config.CORSOrigin,
		maxUpload:  config.MaxUploadMB * 1024 * 1024,
		timeout:    config.Timeout,
		logger:     logger,
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(config.RateLimit)
	}
	return s
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/ocr/frame", s.corsMiddleware(s.rateLimitMiddleware(s.frameHandler)))
	mux.HandleFunc("/ws/frames", s.rateLimitMiddleware(s.frameWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
