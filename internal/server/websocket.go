package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/imageio"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// WebSocketFrameRequest is one text message on /ws/frames. Image carries
// the encoded frame as base64.
type WebSocketFrameRequest struct {
	Type    string         `json:"type"`
	ID      string         `json:"id,omitempty"`
	Image   []byte         `json:"image"`
	Options map[string]any `json:"options,omitempty"`
}

// WebSocketConnWriter is the write side of a WebSocket connection.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return s.corsOrigin == "*" || origin == "" || origin == s.corsOrigin
		},
	}
}

// frameWebSocketHandler streams frames over one connection. Frames on a
// connection are processed one after another in arrival order.
func (s *Server) frameWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	conn.SetReadLimit(s.maxUpload * 2)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go keepAlive(ctx, conn)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		s.sendWebSocketResponse(conn, s.handleWebSocketMessage(ctx, messageType, data))
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// handleWebSocketMessage turns one message into a reply. Binary messages
// are raw encoded frames processed with the server defaults.
func (s *Server) handleWebSocketMessage(ctx context.Context, messageType int, data []byte) FrameResponse {
	req := WebSocketFrameRequest{Type: "frame"}
	switch messageType {
	case websocket.BinaryMessage:
		req.Image = data
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &req); err != nil {
			return wsError(req.ID, "invalid request: "+err.Error())
		}
		if req.Type != "frame" {
			return wsError(req.ID, "unsupported message type: "+req.Type)
		}
	default:
		return wsError("", "unsupported message")
	}

	if len(req.Image) == 0 {
		return wsError(req.ID, "no image data provided")
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	img, _, err := imageio.DecodeImage(req.Image)
	if err != nil {
		return wsError(req.ID, "invalid image format")
	}

	out, err := s.process(ctx, img, frame.ParseOptions(req.Options, s.defaults), "websocket")
	if err != nil {
		return wsError(req.ID, err.Error())
	}
	resp := frameResponse(out)
	resp.Type = "result"
	resp.ID = req.ID
	return resp
}

func wsError(id, message string) FrameResponse {
	return FrameResponse{Type: "error", ID: id, Success: false, Error: message}
}

func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response FrameResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("Failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
