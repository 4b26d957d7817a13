package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
)

// APIHandler exposes the thin HTTP surface next to the websocket protocol:
// create-session for hosts and a public code-exists probe for pre-join
// validation.
type APIHandler struct {
	service *game.GameService
	log     zerolog.Logger
}

func NewAPIHandler(service *game.GameService, log zerolog.Logger) *APIHandler {
	return &APIHandler{service: service, log: log}
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
}

type createSessionResponse struct {
	Code string `json:"code"`
}

type codeStatusResponse struct {
	Exists bool         `json:"exists"`
	Phase  domain.Phase `json:"phase,omitempty"`
}

// CreateSession handles POST /api/sessions. The caller identity comes from
// the upstream gateway via the X-User-ID header and must own the quiz.
func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	hostID := r.Header.Get("X-User-ID")
	if hostID == "" {
		http.Error(w, "missing X-User-ID", http.StatusUnauthorized)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	code, err := h.service.CreateSession(r.Context(), hostID, req.QuizID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createSessionResponse{Code: code})
}

// CodeStatus handles GET /api/sessions/{code}. Unknown codes are not errors:
// clients use this to validate a code before attempting a join.
func (h *APIHandler) CodeStatus(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	phase, ok := h.service.CodeStatus(code)
	resp := codeStatusResponse{Exists: ok}
	if ok {
		resp.Phase = phase
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrNotQuizOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error().Err(err).Msg("create session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
