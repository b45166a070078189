package server

import (
	"bytes"
	"context"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

// processorFunc adapts a function to FrameProcessor.
type processorFunc func(ctx context.Context, img image.Image, opts frame.Options) (*frame.Outcome, error)

func (f processorFunc) Process(ctx context.Context, img image.Image, opts frame.Options) (*frame.Outcome, error) {
	return f(ctx, img, opts)
}

// blockingProcessor waits for its context like a stalled recognizer.
var blockingProcessor = processorFunc(func(ctx context.Context, _ image.Image, _ frame.Options) (*frame.Outcome, error) {
	<-ctx.Done()
	return &frame.Outcome{}, nil
})

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	frames := frame.New(testutil.NewInkRecognizer("HELLO"), frame.DefaultConfig())
	return NewServer(frames, frame.DefaultOptions(), cfg, nil)
}

// frameRequest builds a multipart upload of img with extra form fields.
func frameRequest(t *testing.T, target string, img image.Image, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if img != nil {
		part, err := mw.CreateFormFile("image", "frame.png")
		require.NoError(t, err)
		_, err = part.Write(testutil.EncodePNG(t, img))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fastTimeout() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	return cfg
}
