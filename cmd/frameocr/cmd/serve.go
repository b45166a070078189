package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/frameocr/internal/server"
)

// serveCmd starts the HTTP and WebSocket frame server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for frame recognition",
	Long: `Start an HTTP server that recognizes frames.

The server provides the following endpoints:
  GET  /health     - Health check endpoint
  POST /ocr/frame  - Recognize an uploaded frame (multipart field "image")
  GET  /ws/frames  - WebSocket stream of frames
  GET  /metrics    - Prometheus metrics

Examples:
  frameocr serve
  frameocr serve --port 8080
  frameocr serve --host 0.0.0.0 --port 3000 --timeout 10s`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "", "host to bind")
	f.IntP("port", "p", 0, "port to listen on")
	f.String("cors-origin", "", "allowed CORS origin")
	f.Int64("max-upload-size", 0, "maximum upload size in MB")
	f.Duration("timeout", 0, "per-frame processing timeout")
	f.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	f.Bool("rate-limit", false, "enable per-client rate limiting")
	f.Int("requests-per-minute", 0, "requests per minute per client (0 = unlimited)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()
	sc := cfg.Server

	f := cmd.Flags()
	sc.Host = stringFlag(cmd, "host", sc.Host)
	sc.CORSOrigin = stringFlag(cmd, "cors-origin", sc.CORSOrigin)
	if f.Changed("port") {
		sc.Port, _ = f.GetInt("port")
	}
	if f.Changed("max-upload-size") {
		sc.MaxUploadMB, _ = f.GetInt64("max-upload-size")
	}
	if f.Changed("timeout") {
		sc.Timeout, _ = f.GetDuration("timeout")
	}
	if f.Changed("rate-limit") {
		sc.RateLimit.Enabled, _ = f.GetBool("rate-limit")
	}
	if f.Changed("requests-per-minute") {
		sc.RateLimit.RequestsPerMinute, _ = f.GetInt("requests-per-minute")
	}
	shutdownTimeout, _ := f.GetDuration("shutdown-timeout")

	proc, err := newFrameProcessor(cfg)
	if err != nil {
		return err
	}
	srv := server.NewServer(proc, cfg.Frame, sc, slog.Default())

	addr := net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting frame server", "addr", addr, "backend", cfg.Recognizer.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-cmd.Context().Done():
	}

	slog.Info("Shutting down frame server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
