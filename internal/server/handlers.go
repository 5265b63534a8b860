package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwgray1010/unsaid/internal/coach"
	"github.com/jwgray1010/unsaid/pkg/types"
)

// maxBodyBytes bounds request bodies; coaching payloads are small.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handlers holds the API handlers over one coach session.
type Handlers struct {
	coach           *coach.Coach
	enableWebSocket bool
}

// NewHandlers creates the API handlers.
func NewHandlers(c *coach.Coach, enableWebSocket bool) *Handlers {
	return &Handlers{coach: c, enableWebSocket: enableWebSocket}
}

// Register wires all routes onto the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/analyze", h.handleAnalyze)
	mux.HandleFunc("/api/feedback", h.handleFeedback)
	mux.HandleFunc("/api/profile", h.handleProfile)
	if h.enableWebSocket {
		mux.HandleFunc("/ws/suggestions", h.handleSuggestionStream)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	Text           string                      `json:"text"`
	EmotionalState string                      `json:"emotional_state,omitempty"`
	History        []types.ConversationMessage `json:"history,omitempty"`
	Transcript     string                      `json:"transcript,omitempty"`
}

func (h *Handlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.coach.Analyze(r.Context(), coach.Request{
		Text:           req.Text,
		EmotionalState: req.EmotionalState,
		History:        types.ConversationHistory{Messages: req.History},
		Transcript:     req.Transcript,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// feedbackRequest is the POST /api/feedback body.
type feedbackRequest struct {
	Suggestion string `json:"suggestion"`
	Accepted   bool   `json:"accepted"`
}

func (h *Handlers) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req feedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Suggestion == "" {
		respondError(w, http.StatusBadRequest, "suggestion is required")
		return
	}

	h.coach.RecordFeedback(r.Context(), req.Suggestion, req.Accepted)
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, h.coach.Profile())

	case http.MethodPut:
		var update coach.ProfileUpdate
		if err := decodeBody(w, r, &update); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if update.Style != "" && !update.Style.IsValid() {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid style %q", update.Style))
			return
		}
		if update.PartnerStyle != "" && !update.PartnerStyle.IsValid() {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid partner style %q", update.PartnerStyle))
			return
		}

		h.coach.UpdateProfile(r.Context(), update)
		respondJSON(w, http.StatusOK, h.coach.Profile())

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// decodeBody decodes a JSON request body with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more to write.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	})
}
