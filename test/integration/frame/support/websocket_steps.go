package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/MeKo-Tech/frameocr/internal/server"
	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"
)

// RegisterWebSocketSteps registers streaming steps.
func (testCtx *TestContext) RegisterWebSocketSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I stream the frame with id "([^"]*)"$`, testCtx.iStreamTheFrameWithID)
	sc.Step(`^the reply should echo the id "([^"]*)"$`, testCtx.theReplyShouldEchoTheID)
}

func (testCtx *TestContext) iStreamTheFrameWithID(ctx context.Context, id string) error {
	if testCtx.Frame == nil {
		return errors.New("no frame prepared")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, testCtx.Frame); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	wsURL := "ws" + strings.TrimPrefix(testCtx.baseURL(), "http") + "/ws/frames"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	req := server.WebSocketFrameRequest{
		Type:    "frame",
		ID:      id,
		Image:   buf.Bytes(),
		Options: map[string]any{"includeConfidence": true},
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	var fr server.FrameResponse
	if err := json.Unmarshal(data, &fr); err != nil {
		return fmt.Errorf("decode reply %q: %w", data, err)
	}
	testCtx.LastBody = data
	testCtx.LastResponse = &fr
	return nil
}

func (testCtx *TestContext) theReplyShouldEchoTheID(id string) error {
	if testCtx.LastResponse == nil {
		return errors.New("no reply received")
	}
	if testCtx.LastResponse.Type != "result" {
		return fmt.Errorf("expected a result reply, got type %q", testCtx.LastResponse.Type)
	}
	if testCtx.LastResponse.ID != id {
		return fmt.Errorf("expected id %q, got %q", id, testCtx.LastResponse.ID)
	}
	return nil
}
