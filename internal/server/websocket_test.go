package server

import (
	"encoding/json"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

// mockWebSocketConn records written messages.
type mockWebSocketConn struct {
	sent [][]byte
}

func (m *mockWebSocketConn) WriteMessage(_ int, data []byte) error {
	m.sent = append(m.sent, data)
	return nil
}

func dialFrames(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) FrameResponse {
	t.Helper()
	var resp FrameResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocket_JSONFrames(t *testing.T) {
	conn := dialFrames(t, newTestServer(t, DefaultConfig()))

	require.NoError(t, conn.WriteJSON(WebSocketFrameRequest{
		Type:    "frame",
		ID:      "f1",
		Image:   testutil.EncodePNG(t, testutil.TextFrame("HELLO")),
		Options: map[string]any{"includeConfidence": true},
	}))
	resp := readResponse(t, conn)
	assert.Equal(t, "result", resp.Type)
	assert.Equal(t, "f1", resp.ID)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "HELLO", resp.Result.Text)
	assert.NotNil(t, resp.Result.Confidence)

	// Frames on one connection are independent.
	require.NoError(t, conn.WriteJSON(WebSocketFrameRequest{
		Type:  "frame",
		ID:    "f2",
		Image: testutil.EncodePNG(t, testutil.BlankFrame(60, 30, color.White)),
	}))
	resp = readResponse(t, conn)
	assert.Equal(t, "f2", resp.ID)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Result)
}

func TestWebSocket_BinaryFrame(t *testing.T) {
	conn := dialFrames(t, newTestServer(t, DefaultConfig()))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, testutil.EncodePNG(t, testutil.TextFrame("HELLO"))))
	resp := readResponse(t, conn)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "HELLO", resp.Result.Text)
	assert.Nil(t, resp.Result.Confidence)
}

func TestWebSocket_Timeout(t *testing.T) {
	conn := dialFrames(t, NewServer(blockingProcessor, frame.DefaultOptions(), fastTimeout(), nil))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, testutil.EncodePNG(t, testutil.TextFrame("HELLO"))))
	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "timed out")
}

func TestHandleWebSocketMessage_Errors(t *testing.T) {
	server := newTestServer(t, DefaultConfig())

	tests := []struct {
		name        string
		messageType int
		data        string
		wantError   string
	}{
		{name: "invalid json", messageType: websocket.TextMessage, data: "{", wantError: "invalid request"},
		{name: "wrong type", messageType: websocket.TextMessage, data: `{"type":"pdf"}`, wantError: "unsupported message type: pdf"},
		{name: "no image", messageType: websocket.TextMessage, data: `{"type":"frame","id":"x"}`, wantError: "no image data provided"},
		{name: "bad image", messageType: websocket.BinaryMessage, data: "not a png", wantError: "invalid image format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := server.handleWebSocketMessage(t.Context(), tt.messageType, []byte(tt.data))
			assert.Equal(t, "error", resp.Type)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

func TestSendWebSocketResponse(t *testing.T) {
	server := newTestServer(t, DefaultConfig())
	conn := &mockWebSocketConn{}

	server.sendWebSocketResponse(conn, wsError("abc", "nope"))

	require.Len(t, conn.sent, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.sent[0], &got))
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "abc", got["id"])
	assert.Equal(t, false, got["success"])
	assert.Contains(t, got, "result")
}
