package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/enhance"
	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/imageio"
	"github.com/MeKo-Tech/frameocr/internal/version"
)

// errTimeout is reported when processing outlives the request timeout.
var errTimeout = errors.New("frame processing timed out")

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// frameHandler recognizes one uploaded frame. Options come from form
// fields or the query string.
func (s *Server) frameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	img, _, err := imageio.DecodeImage(data)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	opts := frame.ParseStringOptions(r.FormValue, s.defaults)
	out, err := s.process(r.Context(), img, opts, "http")
	switch {
	case errors.Is(err, errTimeout):
		s.writeErrorResponse(w, err.Error(), http.StatusGatewayTimeout)
		return
	case errors.Is(err, enhance.ErrInvalidArgument):
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.writeErrorResponse(w, fmt.Sprintf("OCR processing failed: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, frameResponse(out))
}

// process runs one frame under the request timeout. Once the deadline
// passes the caller gets errTimeout even if the processor later returns.
func (s *Server) process(ctx context.Context, img image.Image, opts frame.Options, transport string) (*frame.Outcome, error) {
	if s.frames == nil {
		return nil, errors.New("frame processor not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		out *frame.Outcome
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		out, err := s.frames.Process(ctx, img, opts)
		done <- result{out, err}
	}()

	var res result
	select {
	case res = <-done:
		if ctx.Err() != nil {
			res = result{err: errTimeout}
		}
	case <-ctx.Done():
		res = result{err: errTimeout}
	}
	frameProcessingDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
	recordOutcome(res.out, res.err)

	if res.err != nil {
		s.logger.Warn("Frame processing failed", "transport", transport, "error", res.err)
		return nil, res.err
	}
	return res.out, nil
}

func frameResponse(out *frame.Outcome) FrameResponse {
	resp := FrameResponse{Success: true}
	if out != nil {
		resp.Result = out.Result
		resp.Attempts = out.Attempts
		if out.Result != nil {
			resp.Variant = string(out.Variant)
		}
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, FrameResponse{Success: false, Error: message})
}
