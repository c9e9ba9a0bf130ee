package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// StreamMessage is the wire envelope for streaming events
type StreamMessage struct {
	Type        string                    `json:"type"` // node_update, complete, error
	Node        string                    `json:"node,omitempty"`
	DurationMS  float64                   `json:"duration_ms,omitempty"`
	Observation *models.Observation       `json:"observation,omitempty"`
	Data        *models.RetrievalResponse `json:"data,omitempty"`
	Message     string                    `json:"message,omitempty"`
}

// StreamHandler streams orchestration node events over WebSocket. Each
// connection carries one request: the client sends a retrieve payload, the
// server emits a node_update per completed stage, then a final complete
// message with the full response.
type StreamHandler struct {
	retrieval interfaces.RetrievalService
	logger    arbor.ILogger
}

func NewStreamHandler(retrieval interfaces.RetrievalService, logger arbor.ILogger) *StreamHandler {
	return &StreamHandler{
		retrieval: retrieval,
		logger:    logger,
	}
}

// HandleStream handles WebSocket connections on /api/retrieve/stream
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	var request RetrieveRequest
	if err := conn.ReadJSON(&request); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read stream request")
		h.writeMessage(conn, StreamMessage{Type: "error", Message: "Invalid request payload"})
		return
	}

	question := strings.TrimSpace(request.Question)
	if question == "" {
		h.writeMessage(conn, StreamMessage{Type: "error", Message: "Question cannot be blank"})
		return
	}

	// Run is synchronous; emit fires on this goroutine so writes stay ordered
	emit := func(event models.NodeEvent) {
		observation := event.Observation
		h.writeMessage(conn, StreamMessage{
			Type:        "node_update",
			Node:        event.Node,
			DurationMS:  event.DurationMS,
			Observation: &observation,
		})
	}

	output, err := h.retrieval.Run(r.Context(), question, request.Context, request.Mode, emit)
	if err != nil {
		h.writeMessage(conn, StreamMessage{Type: "error", Message: err.Error()})
		return
	}

	h.writeMessage(conn, StreamMessage{Type: "complete", Data: output.ToResponse()})
}

func (h *StreamHandler) writeMessage(conn *websocket.Conn, message StreamMessage) {
	if err := conn.WriteJSON(message); err != nil {
		h.logger.Warn().Err(err).Str("type", message.Type).Msg("Failed to write stream message")
	}
}
