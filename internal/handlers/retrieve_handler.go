package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// RetrieveRequest is the POST /api/retrieve payload
type RetrieveRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
	Mode     string `json:"mode,omitempty"` // "live" (default) or "preparation"
}

// RetrieveHandler serves orchestrated retrieval runs
type RetrieveHandler struct {
	retrieval interfaces.RetrievalService
	logger    arbor.ILogger
}

func NewRetrieveHandler(retrieval interfaces.RetrievalService, logger arbor.ILogger) *RetrieveHandler {
	return &RetrieveHandler{
		retrieval: retrieval,
		logger:    logger,
	}
}

// RetrieveHandler handles POST /api/retrieve requests
func (h *RetrieveHandler) RetrieveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var request RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	question := strings.TrimSpace(request.Question)
	if question == "" {
		WriteError(w, http.StatusUnprocessableEntity, "Question cannot be blank")
		return
	}

	mode := request.Mode
	if mode == "" {
		mode = models.ModeLive
	}
	if mode != models.ModeLive && mode != models.ModePreparation {
		WriteError(w, http.StatusUnprocessableEntity, "Mode must be 'live' or 'preparation'")
		return
	}

	h.logger.Info().
		Str("mode", mode).
		Int("question_length", len(question)).
		Msg("Retrieve request received")

	output, err := h.retrieval.Run(r.Context(), question, request.Context, mode, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Retrieval run failed")
		WriteError(w, http.StatusInternalServerError, "Retrieval failed")
		return
	}

	h.logger.Info().
		Str("request_id", output.RequestID).
		Str("safety", string(output.Safety.Level)).
		Float64("total_ms", output.Timings["total"]).
		Msg("Retrieve request completed")

	WriteJSON(w, http.StatusOK, output.ToResponse())
}
