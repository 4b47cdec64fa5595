package chat

import (
	"encoding/json"
	"net/http"

	"github.com/prescripto/clinic-platform/pkg/logging"
)

// Handler exposes the triage dialogue over HTTP.
type Handler struct {
	dialogue *Dialogue
	logger   *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(dialogue *Dialogue, logger *logging.Logger) *Handler {
	if dialogue == nil {
		panic("chat: dialogue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dialogue: dialogue, logger: logger}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	reply, err := h.dialogue.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", "error", err, "session_id", req.SessionID)
		http.Error(w, "chat unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{Reply: reply})
}
