package support

import (
	"image"
	"log/slog"
	"net/http/httptest"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/server"
	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	Recognizer *testutil.InkRecognizer
	Frame      image.Image
	Server     *httptest.Server

	// HTTP response state
	LastStatus   int
	LastBody     []byte
	LastResponse *server.FrameResponse
}

// NewTestContext creates an empty scenario context.
func NewTestContext() *TestContext {
	return &TestContext{}
}

// Cleanup stops the test server.
func (testCtx *TestContext) Cleanup() {
	if testCtx.Server != nil {
		testCtx.Server.Close()
		testCtx.Server = nil
	}
}

// baseURL starts the in-process server on first use.
func (testCtx *TestContext) baseURL() string {
	if testCtx.Server == nil {
		rec := testCtx.Recognizer
		if rec == nil {
			rec = testutil.NewInkRecognizer()
			testCtx.Recognizer = rec
		}
		proc := frame.New(rec, frame.DefaultConfig())
		srv := server.NewServer(proc, frame.DefaultOptions(), server.DefaultConfig(), slog.New(slog.DiscardHandler))
		testCtx.Server = httptest.NewServer(srv.Handler())
	}
	return testCtx.Server.URL
}
