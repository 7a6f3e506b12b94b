package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devflow-qa/apiserver/internal/services"
)

// AnswerHandler provides HTTP handlers for operations addressed by
// answer ID. Listing and creation live under the owning question.
type AnswerHandler struct {
	answerService *services.AnswerService
}

// NewAnswerHandler constructs a handler with the provided service.
func NewAnswerHandler(answerService *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// AnswerRouter registers answer routes on the given router.
func AnswerRouter(r chi.Router, answerService *services.AnswerService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAnswerHandler(answerService)

	r.With(authMiddleware).Post("/{answerID}/vote", handler.VoteAnswer)
}

func (h *AnswerHandler) VoteAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "answerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.answerService.Vote(r.Context(), userID, id, req.Value); err != nil {
		writeServiceError(w, err, "failed to record vote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
