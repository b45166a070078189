package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/MeKo-Tech/frameocr/internal/server"
	"github.com/MeKo-Tech/frameocr/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterFrameSteps registers frame setup and HTTP submission steps.
func (testCtx *TestContext) RegisterFrameSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a frame showing "([^"]*)"$`, testCtx.aFrameShowing)
	sc.Step(`^a (small|medium) frame with the lines:$`, testCtx.aFrameWithTheLines)
	sc.Step(`^a blank frame$`, testCtx.aBlankFrame)
	sc.Step(`^I submit the frame$`, testCtx.iSubmitTheFrame)
	sc.Step(`^I submit the frame with "([^"]*)"$`, testCtx.iSubmitTheFrameWith)
	sc.Step(`^I submit "([^"]*)" as the image$`, testCtx.iSubmitAsTheImage)
}

func (testCtx *TestContext) aFrameShowing(text string) error {
	testCtx.Recognizer = testutil.NewInkRecognizer(text)
	testCtx.Frame = testutil.TextFrame(text)
	return nil
}

// aFrameWithTheLines renders a single column table. Empty cells leave a gap
// that starts a new text block.
func (testCtx *TestContext) aFrameWithTheLines(size string, table *godog.Table) error {
	cfg := testutil.DefaultFrameConfig()
	cfg.Lines = nil
	if size == "medium" {
		cfg.Size = testutil.MediumSize
	}

	var script []string
	for _, row := range table.Rows {
		if len(row.Cells) != 1 {
			return fmt.Errorf("expected one cell per row, got %d", len(row.Cells))
		}
		line := strings.TrimSpace(row.Cells[0].Value)
		cfg.Lines = append(cfg.Lines, line)
		if line != "" {
			script = append(script, line)
		}
	}

	testCtx.Recognizer = testutil.NewInkRecognizer(script...)
	testCtx.Frame = testutil.GenerateFrame(cfg)
	return nil
}

func (testCtx *TestContext) aBlankFrame() error {
	testCtx.Recognizer = testutil.NewInkRecognizer()
	testCtx.Frame = testutil.BlankFrame(120, 80, color.White)
	return nil
}

func (testCtx *TestContext) iSubmitTheFrame(ctx context.Context) error {
	return testCtx.iSubmitTheFrameWith(ctx, "")
}

// iSubmitTheFrameWith posts the frame with options given as a query string.
func (testCtx *TestContext) iSubmitTheFrameWith(ctx context.Context, query string) error {
	if testCtx.Frame == nil {
		return errors.New("no frame prepared")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, testCtx.Frame); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return testCtx.post(ctx, query, buf.Bytes())
}

func (testCtx *TestContext) iSubmitAsTheImage(ctx context.Context, content string) error {
	return testCtx.post(ctx, "", []byte(content))
}

func (testCtx *TestContext) post(ctx context.Context, query string, data []byte) error {
	values, err := url.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("invalid options %q: %w", query, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "frame.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for key := range values {
		if err := mw.WriteField(key, values.Get(key)); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, testCtx.baseURL()+"/ocr/frame", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("post frame: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	testCtx.LastStatus = resp.StatusCode
	testCtx.LastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var fr server.FrameResponse
	if err := json.Unmarshal(testCtx.LastBody, &fr); err != nil {
		return fmt.Errorf("decode response %q: %w", testCtx.LastBody, err)
	}
	testCtx.LastResponse = &fr
	return nil
}
