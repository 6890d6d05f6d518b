package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/careline-ai/careline/pkg/logging"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	UserID    string `json:"user_id"`
	Utterance string `json:"utterance"`
}

// PostbackRequest is the body of POST /v1/postback.
type PostbackRequest struct {
	UserID string `json:"user_id"`
	Data   string `json:"data"`
}

// Handler wires HTTP requests to the pipeline.
type Handler struct {
	orch   *Orchestrator
	logger *logging.Logger
}

// NewHandler creates a pipeline handler.
func NewHandler(orch *Orchestrator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orch: orch, logger: logger}
}

// Analyze handles POST /v1/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode analyze request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	resp := h.orch.Handle(r.Context(), req.UserID, req.Utterance)
	h.writeJSON(w, http.StatusOK, resp)
}

// Postback handles POST /v1/postback.
func (h *Handler) Postback(w http.ResponseWriter, r *http.Request) {
	var req PostbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode postback request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	resp := h.orch.HandlePostback(r.Context(), req.UserID, req.Data)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
